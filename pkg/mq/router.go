package mq

import (
	"context"
	"encoding/json"
	"sort"

	"go.uber.org/zap"
)

// Router 按路由键把消息分发给已注册的 handler；可直接作为 Consumer 的 MessageHandler
type Router struct {
	routes map[string]MessageHandler
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		routes: make(map[string]MessageHandler),
		logger: logger,
	}
}

// Register 为一个或多个路由键注册同一个 handler，后注册的覆盖先注册的
func (r *Router) Register(h MessageHandler, routingKeys ...string) {
	for _, key := range routingKeys {
		r.routes[key] = h
	}
}

// RoutingKeys 返回已注册的路由键（排序后），用于队列绑定
func (r *Router) RoutingKeys() []string {
	keys := make([]string, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Handle 未注册的路由键直接确认，不重新入队
func (r *Router) Handle(ctx context.Context, routingKey string, data json.RawMessage) error {
	h, ok := r.routes[routingKey]
	if !ok {
		r.logger.Warn("No handler for routing key", zap.String("routing_key", routingKey))
		return nil
	}
	return h(ctx, routingKey, data)
}
