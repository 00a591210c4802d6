// Package matching pairs up compatible donation offers with a greedy,
// order-dependent scan.
package matching

import (
	"go.uber.org/zap"

	"github.com/ZoeWilliams/donationswap/internal/domain/model"
	"github.com/ZoeWilliams/donationswap/internal/domain/rules"
)

type Pair struct {
	A model.Offer
	B model.Offer
}

type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Pair matches offers greedily. The working list is consumed from the end
// (most recent first, given oldest-first input) and the remainder scanned
// front to back for the first compatible offer. Offers left without a
// counterpart stay unmatched until a later run. O(n²), order dependent;
// acceptable at human-scale batch volume.
func (e *Engine) Pair(offers []model.Offer) []Pair {
	working := make([]model.Offer, len(offers))
	copy(working, offers)

	pairs := make([]Pair, 0, len(offers)/2)

	for len(working) > 0 {
		taken := working[len(working)-1]
		working = working[:len(working)-1]

		for i, candidate := range working {
			ok, reason := rules.Compatible(taken, candidate)
			if !ok {
				e.logger.Debug("offers incompatible",
					zap.Int64("offer_id", taken.ID),
					zap.Int64("candidate_id", candidate.ID),
					zap.String("reason", string(reason)),
				)
				continue
			}

			e.logger.Info("offers matched",
				zap.Int64("offer_id", taken.ID),
				zap.Int64("candidate_id", candidate.ID),
			)
			pairs = append(pairs, Pair{A: taken, B: candidate})
			working = append(working[:i], working[i+1:]...)
			break
		}
	}

	e.logger.Info("matching pass finished",
		zap.Int("eligible", len(offers)),
		zap.Int("pairs", len(pairs)),
	)

	return pairs
}
