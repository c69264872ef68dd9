package snapshot

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
)

type snapshotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SnapshotKey(sellerID, country, region string) string
}

// RedisCollector reads the raw marketplace snapshot the ingestion side
// staged in Redis. It is the production Collector implementation.
type RedisCollector struct {
	store snapshotStore
	logg  *logger.Logger
}

// NewRedisCollector builds a collector backed by the given Redis store.
func NewRedisCollector(store snapshotStore, logg *logger.Logger) *RedisCollector {
	return &RedisCollector{store: store, logg: logg}
}

// Collect loads and decodes the staged snapshot for one seller marketplace.
func (c *RedisCollector) Collect(ctx context.Context, sellerID, country, region string) (*Snapshot, error) {
	key := c.store.SnapshotKey(sellerID, country, region)
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if stderrors.Is(err, goredis.Nil) {
			return nil, errors.New(errors.CodeNotFound, "no snapshot staged for seller marketplace")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading staged snapshot")
	}
	if raw == "" {
		return nil, errors.New(errors.CodeNotFound, "no snapshot staged for seller marketplace")
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "decoding staged snapshot")
	}
	if c.logg != nil {
		c.logg.Info(c.logg.WithSellerID(ctx, sellerID), "snapshot collected")
	}
	return &snap, nil
}

// Stage stores a raw snapshot for later collection. The ingestion pipeline
// and test tooling both write through this path.
func (c *RedisCollector) Stage(ctx context.Context, sellerID, country, region string, snap *Snapshot, ttl time.Duration) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "encoding snapshot")
	}
	key := c.store.SnapshotKey(sellerID, country, region)
	if err := c.store.Set(ctx, key, string(body), ttl); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "staging snapshot")
	}
	return nil
}
