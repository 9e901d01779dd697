package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// InsertEventInTx 在事务中插入事件到 outbox（辅助函数）
func InsertEventInTx(
	ctx context.Context,
	tx pgx.Tx,
	repo *Repository,
	aggregateType string,
	aggregateID string,
	routingKey string,
	payload any,
) error {
	event, err := NewEvent(aggregateType, aggregateID, routingKey, payload)
	if err != nil {
		return err
	}
	return repo.InsertEvent(ctx, tx, event)
}

// NewEvent 构造一个 pending 状态的事件
func NewEvent(aggregateType, aggregateID, routingKey string, payload any) (*Event, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	event := &Event{
		AggregateType: aggregateType,
		RoutingKey:    routingKey,
		Payload:       payloadJSON,
		Status:        StatusPending,
	}
	if aggregateID != "" {
		event.AggregateID = &aggregateID
	}
	return event, nil
}
