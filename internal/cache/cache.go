package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	KeyProduct  = "products:"
	KeyProducts = "products:all"

	TTL = 5 * time.Minute
)

// InvalidateProducts drops the listing key and the given per-product keys so
// the next read repopulates from the database.
func InvalidateProducts(c context.Context, client *redis.Client, ids ...uuid.UUID) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, KeyProducts)
	for _, id := range ids {
		keys = append(keys, KeyProduct+id.String())
	}
	return client.Del(c, keys...).Err()
}
