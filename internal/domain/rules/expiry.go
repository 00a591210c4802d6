package rules

import (
	"time"

	"github.com/ZoeWilliams/donationswap/internal/domain/enums"
	"github.com/ZoeWilliams/donationswap/internal/domain/model"
)

const (
	// OfferConfirmationWindow is how long an unconfirmed offer survives
	// before the cleanup sweep removes it.
	OfferConfirmationWindow = 48 * time.Hour

	// MatchResponseWindow is how long both parties have to respond to a
	// proposed match before it is considered stale.
	MatchResponseWindow = 7 * 24 * time.Hour

	// MatchAgreedRetention caps how long a fully agreed match may sit
	// unprocessed before it is removed anyway.
	MatchAgreedRetention = 28 * 24 * time.Hour
)

// OfferExpired reports whether o is an unconfirmed offer whose
// confirmation window has passed. Confirmed offers never expire here.
func OfferExpired(o model.Offer, now time.Time) bool {
	return !o.Confirmed && o.CreatedAt.Add(OfferConfirmationWindow).Before(now)
}

// MatchDeclined reports whether either party has turned the match down.
func MatchDeclined(m model.Match) bool {
	return m.NewAgrees == enums.AgreementDeclined || m.OldAgrees == enums.AgreementDeclined
}

// MatchStale reports whether m has been waiting on a response for too long.
// The two flags are intentionally not treated alike: an undecided
// new_agrees marks the match stale regardless of age, while an undecided
// old_agrees only does so once the response window has passed. This
// asymmetry is long-standing production behaviour; do not symmetrize it
// without a product decision.
func MatchStale(m model.Match, now time.Time) bool {
	if m.NewAgrees == enums.AgreementUndecided {
		return true
	}
	return m.OldAgrees == enums.AgreementUndecided && m.CreatedAt.Add(MatchResponseWindow).Before(now)
}

// MatchAgreedExpired reports whether a fully agreed match has outlived its
// retention window without being finalized.
func MatchAgreedExpired(m model.Match, now time.Time) bool {
	return m.NewAgrees == enums.AgreementAgreed &&
		m.OldAgrees == enums.AgreementAgreed &&
		m.CreatedAt.Add(MatchAgreedRetention).Before(now)
}
