package matching_test

import (
	"testing"
	"time"

	"github.com/ZoeWilliams/donationswap/internal/domain/model"
	"github.com/ZoeWilliams/donationswap/internal/domain/rules"
	matchingsvc "github.com/ZoeWilliams/donationswap/internal/services/matching"
)

func TestPairSkipsIncompatibleAndLeavesRemainderUnmatched(t *testing.T) {
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	offerA := model.Offer{ID: 1, Email: "x@example.com", CharityID: 1, CountryID: 100, CreatedAt: base}
	offerB := model.Offer{ID: 2, Email: "y@example.com", CharityID: 2, CountryID: 200, CreatedAt: base.Add(time.Hour)}
	offerC := model.Offer{ID: 3, Email: "z@example.com", CharityID: 1, CountryID: 300, CreatedAt: base.Add(2 * time.Hour)}

	engine := matchingsvc.NewEngine(nil)
	pairs := engine.Pair([]model.Offer{offerA, offerB, offerC})

	if len(pairs) != 1 {
		t.Fatalf("unexpected pair count: got %d want %d", len(pairs), 1)
	}

	got := idSet(pairs[0])
	if !got[offerB.ID] || !got[offerC.ID] {
		t.Fatalf("expected pair of offers %d and %d, got %v", offerB.ID, offerC.ID, got)
	}
	if got[offerA.ID] {
		t.Fatalf("offer %d shares a charity with offer %d and must stay unmatched", offerA.ID, offerC.ID)
	}
}

func TestPairEmitsOnlyCompatibleDisjointPairs(t *testing.T) {
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	offers := []model.Offer{
		{ID: 1, Email: "a@example.com", CharityID: 1, CountryID: 100, CreatedAt: base},
		{ID: 2, Email: "b@example.com", CharityID: 2, CountryID: 200, CreatedAt: base.Add(1 * time.Hour)},
		{ID: 3, Email: "c@example.com", CharityID: 3, CountryID: 300, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, Email: "d@example.com", CharityID: 4, CountryID: 400, CreatedAt: base.Add(3 * time.Hour)},
	}

	engine := matchingsvc.NewEngine(nil)
	pairs := engine.Pair(offers)

	if len(pairs) != 2 {
		t.Fatalf("unexpected pair count: got %d want %d", len(pairs), 2)
	}

	seen := map[int64]bool{}
	for _, pair := range pairs {
		if ok, reason := rules.Compatible(pair.A, pair.B); !ok {
			t.Fatalf("emitted incompatible pair (%d, %d): %s", pair.A.ID, pair.B.ID, reason)
		}
		for id := range idSet(pair) {
			if seen[id] {
				t.Fatalf("offer %d appears in two pairs", id)
			}
			seen[id] = true
		}
	}
}

func TestPairNoCompatibleOffers(t *testing.T) {
	offers := []model.Offer{
		{ID: 1, Email: "a@example.com", CharityID: 1, CountryID: 100},
		{ID: 2, Email: "b@example.com", CharityID: 1, CountryID: 200},
		{ID: 3, Email: "c@example.com", CharityID: 1, CountryID: 300},
	}

	engine := matchingsvc.NewEngine(nil)
	if pairs := engine.Pair(offers); len(pairs) != 0 {
		t.Fatalf("same-charity offers must not pair, got %d pairs", len(pairs))
	}
}

func TestPairEmptyInput(t *testing.T) {
	engine := matchingsvc.NewEngine(nil)
	if pairs := engine.Pair(nil); len(pairs) != 0 {
		t.Fatalf("empty input must produce no pairs, got %d", len(pairs))
	}
}

func idSet(pair matchingsvc.Pair) map[int64]bool {
	return map[int64]bool{pair.A.ID: true, pair.B.ID: true}
}
