package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const rateKeyPrefix = "rates:"

// RatesRepo caches exchange-rate snapshots. Values are decimal strings so
// no precision is lost on the round trip.
type RatesRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRatesRepo(client *goredis.Client, ttl time.Duration) *RatesRepo {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RatesRepo{client: client, ttl: ttl}
}

// Rate returns the cached rate for iso. A missing or unparsable entry
// reads as a miss, never an error.
func (r *RatesRepo) Rate(ctx context.Context, iso string) (decimal.Decimal, bool, error) {
	if r.client == nil {
		return decimal.Decimal{}, false, fmt.Errorf("redis client is nil")
	}
	if iso == "" {
		return decimal.Decimal{}, false, fmt.Errorf("currency iso is required")
	}

	val, err := r.client.Get(ctx, rateKey(iso)).Result()
	if err == goredis.Nil {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("get cached rate: %w", err)
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Decimal{}, false, nil
	}

	return rate, true, nil
}

// StoreRates caches one snapshot of rates under the repo TTL.
func (r *RatesRepo) StoreRates(ctx context.Context, rates map[string]decimal.Decimal) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if len(rates) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for iso, rate := range rates {
		pipe.Set(ctx, rateKey(iso), rate.String(), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rates: %w", err)
	}

	return nil
}

func rateKey(iso string) string {
	return rateKeyPrefix + strings.ToUpper(iso)
}
