package otel

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// StartDBSpan 为一条 SQL 创建 client span
func StartDBSpan(ctx context.Context, sql string) (context.Context, trace.Span) {
	op := dbOperation(sql)
	return Tracer().Start(ctx, "pg "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemKey.String("postgresql"),
			attribute.String("db.operation", op),
			attribute.String("db.statement", sql),
		),
	)
}

// EndDBSpan 结束 span；ErrNoRows 不算错误
func EndDBSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// dbOperation 取 SQL 的首个关键字
func dbOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}
