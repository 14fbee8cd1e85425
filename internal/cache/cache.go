package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Cache guarda respuestas ya serializadas de lectura. Todas las implementaciones
// son seguras para uso concurrente.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

const (
	productKeyPrefix = "product:"
	// ProductsPrefix agrupa listados, destacados y conteo; se invalida en cada escritura.
	ProductsPrefix = "products:"
)

func ProductKey(id string) string {
	return productKeyPrefix + id
}

func ListKey(categoryIDs []string) string {
	ids := append([]string(nil), categoryIDs...)
	sort.Strings(ids)
	return ProductsPrefix + "list:" + strings.Join(ids, ",")
}

func FeaturedKey(count int64) string {
	return ProductsPrefix + "featured:" + strconv.FormatInt(count, 10)
}

func CountKey() string {
	return ProductsPrefix + "count"
}

// Nop desactiva el caché sin condicionar el código que lo usa.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error               { return nil }
func (Nop) DeleteByPrefix(context.Context, string) error          { return nil }
func (Nop) Close() error                                          { return nil }
