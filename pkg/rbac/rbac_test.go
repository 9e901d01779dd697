package rbac

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleUser, PermissionWriteLog))
	assert.True(t, HasPermission("", PermissionCreateHabit))
	assert.False(t, HasPermission(RoleUser, PermissionReplayOutbox))
	assert.True(t, HasPermission(RoleAdmin, PermissionReplayOutbox))
	assert.True(t, HasPermission(RoleAdmin, PermissionWriteLog))
	assert.False(t, HasPermission("guest", PermissionReadHabit))
}

func TestCheckPermission(t *testing.T) {
	err := CheckPermission("u1", RoleUser, PermissionReadOutbox)
	var denied *PermissionDeniedError
	assert.True(t, errors.As(err, &denied))
	assert.Equal(t, "u1", denied.UserID)

	assert.NoError(t, CheckPermission("u1", RoleAdmin, PermissionReadOutbox))
}

func TestCheckOwnership(t *testing.T) {
	assert.NoError(t, CheckOwnership("u1", "u1"))

	var owned *OwnershipError
	assert.True(t, errors.As(CheckOwnership("u1", "u2"), &owned))
}

func TestIsKnownRole(t *testing.T) {
	assert.True(t, IsKnownRole(RoleUser))
	assert.True(t, IsKnownRole(RoleAdmin))
	assert.False(t, IsKnownRole("root"))
	assert.False(t, IsKnownRole(""))
}
