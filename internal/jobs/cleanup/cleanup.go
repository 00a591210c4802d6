// Package cleanup sweeps dead records ahead of a matchmaking pass:
// unconfirmed offers past their confirmation window, declined matches,
// matches nobody answered, and agreed matches past retention.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ZoeWilliams/donationswap/internal/domain/model"
	"github.com/ZoeWilliams/donationswap/internal/domain/rules"
)

type OfferStore interface {
	ListUnconfirmed(ctx context.Context) ([]model.Offer, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

type MatchStore interface {
	ListAll(ctx context.Context) ([]model.Match, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

type Job struct {
	offers  OfferStore
	matches MatchStore
	dryRun  bool
	now     func() time.Time
	logger  *zap.Logger
}

func New(offers OfferStore, matches MatchStore, dryRun bool, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		offers:  offers,
		matches: matches,
		dryRun:  dryRun,
		now:     time.Now,
		logger:  logger,
	}
}

// Run executes one sweep. Offers go first so their matches are already
// gone before the match groups are examined.
func (j *Job) Run(ctx context.Context) error {
	if j.offers == nil || j.matches == nil {
		return fmt.Errorf("cleanup dependencies are not configured")
	}

	now := j.now()

	unconfirmed, err := j.offers.ListUnconfirmed(ctx)
	if err != nil {
		return fmt.Errorf("list unconfirmed offers: %w", err)
	}
	var expiredOffers []int64
	for _, offer := range unconfirmed {
		if rules.OfferExpired(offer, now) {
			expiredOffers = append(expiredOffers, offer.ID)
		}
	}
	if err := j.deleteOffers(ctx, expiredOffers); err != nil {
		return err
	}

	matches, err := j.matches.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}

	var declined, stale, expired []int64
	for _, match := range matches {
		switch {
		case rules.MatchDeclined(match):
			declined = append(declined, match.ID)
		case rules.MatchStale(match, now):
			stale = append(stale, match.ID)
		case rules.MatchAgreedExpired(match, now):
			expired = append(expired, match.ID)
		}
	}

	if err := j.deleteMatches(ctx, "declined", declined); err != nil {
		return err
	}
	if err := j.deleteMatches(ctx, "stale", stale); err != nil {
		return err
	}
	return j.deleteMatches(ctx, "expired", expired)
}

func (j *Job) deleteOffers(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if j.dryRun {
		j.logger.Info("dry run, would delete expired offers", zap.Int("count", len(ids)))
		return nil
	}

	deleted, err := j.offers.DeleteByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("delete expired offers: %w", err)
	}
	j.logger.Info("expired offers deleted", zap.Int64("deleted", deleted))
	return nil
}

func (j *Job) deleteMatches(ctx context.Context, reason string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if j.dryRun {
		j.logger.Info("dry run, would delete matches",
			zap.String("reason", reason), zap.Int("count", len(ids)))
		return nil
	}

	deleted, err := j.matches.DeleteByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("delete %s matches: %w", reason, err)
	}
	j.logger.Info("matches deleted", zap.String("reason", reason), zap.Int64("deleted", deleted))
	return nil
}
