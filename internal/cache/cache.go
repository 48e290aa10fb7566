package cache

import (
	"context"
	"fmt"
	"time"
)

// BytesCache: best-effort кэш. Ошибки кэша не должны ломать чтение из БД.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func TrackingViewKey(trackingNumber string) string {
	return fmt.Sprintf("shipment:%s:view", trackingNumber)
}
