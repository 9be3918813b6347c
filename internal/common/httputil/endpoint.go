package httputil

import (
	"context"
)

type endpointKey struct{}

// WithEndpoint помечает запрос шаблоном эндпоинта для метрик, например "/notifications/{id}/mark-read/".
func WithEndpoint(ctx context.Context, endpoint string) context.Context {
	return context.WithValue(ctx, endpointKey{}, endpoint)
}
