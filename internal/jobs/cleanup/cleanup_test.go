package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/ZoeWilliams/donationswap/internal/domain/enums"
	"github.com/ZoeWilliams/donationswap/internal/domain/model"
)

func TestRunDeletesExpiredUnconfirmedOffers(t *testing.T) {
	now := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)

	offers := &fakeOfferStore{
		offers: []model.Offer{
			{ID: 1, Confirmed: false, CreatedAt: now.Add(-49 * time.Hour)},
			{ID: 2, Confirmed: false, CreatedAt: now.Add(-47 * time.Hour)},
			{ID: 3, Confirmed: true, CreatedAt: now.Add(-200 * time.Hour)},
		},
	}
	matches := &fakeMatchStore{}

	job := New(offers, matches, false, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	if len(offers.deleted) != 1 {
		t.Fatalf("unexpected offer delete calls: %v", offers.deleted)
	}
	if got := offers.deleted[0]; len(got) != 1 || got[0] != 1 {
		t.Fatalf("only the expired unconfirmed offer should go: %v", got)
	}
}

func TestRunSweepsMatchGroupsInOrder(t *testing.T) {
	now := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)

	offers := &fakeOfferStore{}
	matches := &fakeMatchStore{
		matches: []model.Match{
			// Declined by one side, goes first.
			{ID: 10, OldAgrees: enums.AgreementDeclined, NewAgrees: enums.AgreementAgreed, CreatedAt: now.Add(-time.Hour)},
			// New side never answered, stale regardless of age.
			{ID: 11, OldAgrees: enums.AgreementAgreed, NewAgrees: enums.AgreementUndecided, CreatedAt: now.Add(-time.Hour)},
			// Fully agreed but past retention.
			{ID: 12, OldAgrees: enums.AgreementAgreed, NewAgrees: enums.AgreementAgreed, CreatedAt: now.Add(-29 * 24 * time.Hour)},
			// Old side still inside its response window, stays.
			{ID: 13, OldAgrees: enums.AgreementUndecided, NewAgrees: enums.AgreementAgreed, CreatedAt: now.Add(-3 * 24 * time.Hour)},
			// Fully agreed and fresh, stays for the finalizer.
			{ID: 14, OldAgrees: enums.AgreementAgreed, NewAgrees: enums.AgreementAgreed, CreatedAt: now.Add(-time.Hour)},
		},
	}

	job := New(offers, matches, false, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	want := [][]int64{{10}, {11}, {12}}
	if len(matches.deleted) != len(want) {
		t.Fatalf("unexpected match delete calls: %v", matches.deleted)
	}
	for i, ids := range want {
		got := matches.deleted[i]
		if len(got) != len(ids) || got[0] != ids[0] {
			t.Fatalf("unexpected delete group %d: got %v want %v", i, got, ids)
		}
	}
}

func TestRunClassifiesDeclinedBeforeStale(t *testing.T) {
	now := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)

	matches := &fakeMatchStore{
		matches: []model.Match{
			// Declined and stale at once; declined wins.
			{ID: 10, OldAgrees: enums.AgreementDeclined, NewAgrees: enums.AgreementUndecided, CreatedAt: now.Add(-time.Hour)},
		},
	}

	job := New(&fakeOfferStore{}, matches, false, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	if len(matches.deleted) != 1 {
		t.Fatalf("unexpected match delete calls: %v", matches.deleted)
	}
	if got := matches.deleted[0]; len(got) != 1 || got[0] != 10 {
		t.Fatalf("match should be deleted exactly once, in the declined group: %v", matches.deleted)
	}
}

func TestRunDryRunDeletesNothing(t *testing.T) {
	now := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)

	offers := &fakeOfferStore{
		offers: []model.Offer{
			{ID: 1, Confirmed: false, CreatedAt: now.Add(-49 * time.Hour)},
		},
	}
	matches := &fakeMatchStore{
		matches: []model.Match{
			{ID: 10, OldAgrees: enums.AgreementDeclined, NewAgrees: enums.AgreementAgreed, CreatedAt: now.Add(-time.Hour)},
		},
	}

	job := New(offers, matches, true, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	if len(offers.deleted) != 0 || len(matches.deleted) != 0 {
		t.Fatalf("dry run must not delete: offers=%v matches=%v", offers.deleted, matches.deleted)
	}
}

type fakeOfferStore struct {
	offers  []model.Offer
	deleted [][]int64
}

func (f *fakeOfferStore) ListUnconfirmed(_ context.Context) ([]model.Offer, error) {
	var unconfirmed []model.Offer
	for _, offer := range f.offers {
		if !offer.Confirmed {
			unconfirmed = append(unconfirmed, offer)
		}
	}
	return unconfirmed, nil
}

func (f *fakeOfferStore) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	f.deleted = append(f.deleted, ids)
	return int64(len(ids)), nil
}

type fakeMatchStore struct {
	matches []model.Match
	deleted [][]int64
}

func (f *fakeMatchStore) ListAll(_ context.Context) ([]model.Match, error) {
	return f.matches, nil
}

func (f *fakeMatchStore) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	f.deleted = append(f.deleted, ids)
	return int64(len(ids)), nil
}
