package aggregator

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockful/anticapture-sub000/internal/store"
	"github.com/blockful/anticapture-sub000/internal/store/schema"
)

// nextBucket folds an observation moving a metric from oldValue to newValue into
// the day bucket. existing is nil for the first observation of the day.
func nextBucket(existing *schema.DaoMetricsDayBucket, key store.DailyBucketKey, oldValue, newValue *big.Int, at time.Time) *schema.DaoMetricsDayBucket {
	volume := new(big.Int).Sub(newValue, oldValue)
	volume.Abs(volume)

	if existing == nil {
		return &schema.DaoMetricsDayBucket{
			Date:       key.Date,
			DaoID:      key.DaoID,
			TokenID:    key.TokenID,
			MetricType: key.MetricType,
			Open:       toDecimal(oldValue),
			High:       toDecimal(maxInt(newValue, oldValue)),
			Low:        toDecimal(minInt(newValue, oldValue)),
			Close:      toDecimal(newValue),
			Average:    toDecimal(newValue),
			Volume:     toDecimal(volume),
			Count:      1,
			LastUpdate: at,
		}
	}

	count := big.NewInt(existing.Count)
	sum := new(big.Int).Mul(existing.Average.BigInt(), count)
	sum.Add(sum, newValue)
	average := sum.Quo(sum, new(big.Int).Add(count, big.NewInt(1)))

	low := existing.Low.BigInt()

	bucket := *existing
	bucket.Average = toDecimal(average)
	// high is compared against the previous low, matching the indexed history
	bucket.High = toDecimal(maxInt(newValue, low))
	bucket.Low = toDecimal(minInt(newValue, low))
	bucket.Close = toDecimal(newValue)
	bucket.Volume = existing.Volume.Add(toDecimal(volume))
	bucket.Count = existing.Count + 1
	bucket.LastUpdate = at
	return &bucket
}

// storeDailyBucket records a metric change in the bucket of the event's day
func storeDailyBucket(ctx context.Context, st store.Store, key store.DailyBucketKey, oldValue, newValue *big.Int, at time.Time) error {
	existing, err := st.GetDailyBucket(ctx, key)
	if err != nil {
		return err
	}
	if err := st.SaveDailyBucket(ctx, nextBucket(existing, key, oldValue, newValue, at)); err != nil {
		return fmt.Errorf("failed to store %s bucket: %w", key.MetricType, err)
	}
	return nil
}

func toDecimal(n *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(n, 0)
}

func maxInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

func minInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
