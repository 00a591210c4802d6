// Package matchmaking drives the offer lifecycle end to end: it pairs
// eligible offers, records a match for every pair, mails suggestions to
// both donors, and finalizes matches once both sides agree.
package matchmaking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ZoeWilliams/donationswap/internal/domain/enums"
	"github.com/ZoeWilliams/donationswap/internal/domain/model"
	"github.com/ZoeWilliams/donationswap/internal/pkg/secrets"
	pgrepo "github.com/ZoeWilliams/donationswap/internal/repo/postgres"
	"github.com/ZoeWilliams/donationswap/internal/services/matching"
)

type OfferStore interface {
	ListMatchCandidates(ctx context.Context) ([]model.Offer, error)
	FindByID(ctx context.Context, id int64) (model.Offer, error)
}

type MatchStore interface {
	Create(ctx context.Context, secret string, newOfferID, oldOfferID int64) (model.Match, error)
	ListAll(ctx context.Context) ([]model.Match, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

type Notifier interface {
	SendSuggested(ctx context.Context, mine, theirs model.Offer, matchSecret string) error
	SendDeal(ctx context.Context, oldOffer, newOffer model.Offer) error
}

type Pairer interface {
	Pair(offers []model.Offer) []matching.Pair
}

type Service struct {
	offers   OfferStore
	matches  MatchStore
	notifier Notifier
	pairer   Pairer
	dryRun   bool
	logger   *zap.Logger
}

type Dependencies struct {
	Offers   OfferStore
	Matches  MatchStore
	Notifier Notifier
	Pairer   Pairer
	Logger   *zap.Logger
}

// NewService wires the matchmaker. With dryRun set every run reports
// what it would do and writes nothing.
func NewService(deps Dependencies, dryRun bool) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		offers:   deps.Offers,
		matches:  deps.Matches,
		notifier: deps.Notifier,
		pairer:   deps.Pairer,
		dryRun:   dryRun,
		logger:   logger,
	}
}

// FindPairs loads every confirmed, unmatched offer and pairs up the
// compatible ones.
func (s *Service) FindPairs(ctx context.Context) ([]matching.Pair, error) {
	if s.offers == nil || s.pairer == nil {
		return nil, fmt.Errorf("matchmaking dependencies are not configured")
	}

	offers, err := s.offers.ListMatchCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list match candidates: %w", err)
	}

	return s.pairer.Pair(offers), nil
}

// Propose records a match for every pair and mails a suggestion to each
// donor. The suggestion names only the recipient's own offer; the
// counterpart's address stays hidden until both sides agree.
func (s *Service) Propose(ctx context.Context, pairs []matching.Pair) error {
	if s.matches == nil || s.notifier == nil {
		return fmt.Errorf("matchmaking dependencies are not configured")
	}

	for _, pair := range pairs {
		oldOffer, newOffer := splitByAge(pair)

		if s.dryRun {
			s.logger.Info("dry run, would propose match",
				zap.Int64("old_offer_id", oldOffer.ID),
				zap.Int64("new_offer_id", newOffer.ID))
			continue
		}

		secret, err := secrets.NewMatchSecret()
		if err != nil {
			return fmt.Errorf("generate match secret: %w", err)
		}

		match, err := s.matches.Create(ctx, secret, newOffer.ID, oldOffer.ID)
		if err != nil {
			return fmt.Errorf("create match: %w", err)
		}
		s.logger.Info("match created",
			zap.Int64("match_id", match.ID),
			zap.Int64("old_offer_id", oldOffer.ID),
			zap.Int64("new_offer_id", newOffer.ID))

		if err := s.notifier.SendSuggested(ctx, oldOffer, newOffer, secret); err != nil {
			if isDataIntegrityErr(err) {
				s.logger.Warn("skipping suggestion, match references broken rows",
					zap.Int64("match_id", match.ID), zap.Error(err))
				continue
			}
			return fmt.Errorf("send suggestion for offer %d: %w", oldOffer.ID, err)
		}
		if err := s.notifier.SendSuggested(ctx, newOffer, oldOffer, secret); err != nil {
			if isDataIntegrityErr(err) {
				s.logger.Warn("skipping suggestion, match references broken rows",
					zap.Int64("match_id", match.ID), zap.Error(err))
				continue
			}
			return fmt.Errorf("send suggestion for offer %d: %w", newOffer.ID, err)
		}
	}

	return nil
}

// Finalize closes out every match both donors agreed to: it mails the
// deal to both sides, then deletes the match row. Sending strictly
// precedes deletion, so a crash in between means a repeated email on
// the next run rather than a lost deal.
func (s *Service) Finalize(ctx context.Context) error {
	if s.offers == nil || s.matches == nil || s.notifier == nil {
		return fmt.Errorf("matchmaking dependencies are not configured")
	}

	matches, err := s.matches.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}

	for _, match := range matches {
		if match.OldAgrees != enums.AgreementAgreed || match.NewAgrees != enums.AgreementAgreed {
			continue
		}

		if s.dryRun {
			s.logger.Info("dry run, would finalize match", zap.Int64("match_id", match.ID))
			continue
		}

		oldOffer, err := s.offers.FindByID(ctx, match.OldOfferID)
		if err != nil {
			if isDataIntegrityErr(err) {
				s.logger.Warn("skipping match, old offer is gone",
					zap.Int64("match_id", match.ID), zap.Error(err))
				continue
			}
			return fmt.Errorf("load offer %d: %w", match.OldOfferID, err)
		}
		newOffer, err := s.offers.FindByID(ctx, match.NewOfferID)
		if err != nil {
			if isDataIntegrityErr(err) {
				s.logger.Warn("skipping match, new offer is gone",
					zap.Int64("match_id", match.ID), zap.Error(err))
				continue
			}
			return fmt.Errorf("load offer %d: %w", match.NewOfferID, err)
		}

		if err := s.notifier.SendDeal(ctx, oldOffer, newOffer); err != nil {
			if isDataIntegrityErr(err) {
				s.logger.Warn("skipping match, deal references broken rows",
					zap.Int64("match_id", match.ID), zap.Error(err))
				continue
			}
			return fmt.Errorf("send deal for match %d: %w", match.ID, err)
		}

		if _, err := s.matches.DeleteByID(ctx, match.ID); err != nil {
			return fmt.Errorf("delete finalized match %d: %w", match.ID, err)
		}
		s.logger.Info("match finalized",
			zap.Int64("match_id", match.ID),
			zap.Int64("old_offer_id", match.OldOfferID),
			zap.Int64("new_offer_id", match.NewOfferID))
	}

	return nil
}

// splitByAge labels a pair the way the agreement columns expect: the
// earlier-created offer is the old one. On equal timestamps the second
// offer of the pair counts as old.
func splitByAge(pair matching.Pair) (oldOffer, newOffer model.Offer) {
	if pair.A.CreatedAt.Before(pair.B.CreatedAt) {
		return pair.A, pair.B
	}
	return pair.B, pair.A
}

// isDataIntegrityErr reports whether err stems from a dangling row
// reference rather than a failing collaborator.
func isDataIntegrityErr(err error) bool {
	return errors.Is(err, pgrepo.ErrOfferNotFound) ||
		errors.Is(err, pgrepo.ErrCharityNotFound) ||
		errors.Is(err, pgrepo.ErrCountryNotFound)
}
