package rbac

import (
	"slices"
)

// 权限常量
const (
	PermissionReadHabit    = "habit:read"
	PermissionCreateHabit  = "habit:create"
	PermissionArchiveHabit = "habit:archive"
	PermissionWriteLog     = "log:write"
	PermissionReadInsights = "insights:read"

	// 运维权限
	PermissionReadOutbox   = "outbox:read"
	PermissionReplayOutbox = "outbox:replay"
)

// 角色常量
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var userPermissions = []string{
	PermissionReadHabit,
	PermissionCreateHabit,
	PermissionArchiveHabit,
	PermissionWriteLog,
	PermissionReadInsights,
}

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleUser:  userPermissions,
	RoleAdmin: append(slices.Clone(userPermissions), PermissionReadOutbox, PermissionReplayOutbox),
}

// NormalizeRole 令牌未声明角色时按普通用户处理
func NormalizeRole(role string) string {
	if role == "" {
		return RoleUser
	}
	return role
}

// IsKnownRole 角色是否在权限映射中
func IsKnownRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role, permission string) bool {
	permissions, ok := rolePermissions[NormalizeRole(role)]
	if !ok {
		return false
	}
	return slices.Contains(permissions, permission)
}

// CheckPermission 检查用户是否有指定权限（返回错误而不是布尔值，便于处理）
func CheckPermission(userID, role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			UserID:     userID,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	UserID     string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}

// CheckOwnership 验证资源属主与 token 中的 user_id 一致
func CheckOwnership(tokenUserID, ownerID string) error {
	if ownerID != tokenUserID {
		return &OwnershipError{
			TokenUserID: tokenUserID,
			OwnerID:     ownerID,
		}
	}
	return nil
}

// OwnershipError 表示资源不属于当前用户
type OwnershipError struct {
	TokenUserID string
	OwnerID     string
}

func (e *OwnershipError) Error() string {
	return "resource does not belong to user"
}
