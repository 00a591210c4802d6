package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ZoeWilliams/donationswap/internal/domain/model"
)

var ErrOfferNotFound = errors.New("offer not found")

type OfferRepo struct {
	pool *pgxpool.Pool
}

func NewOfferRepo(pool *pgxpool.Pool) *OfferRepo {
	return &OfferRepo{pool: pool}
}

// ListMatchCandidates returns confirmed offers that are not part of any
// match, oldest first.
func (r *OfferRepo) ListMatchCandidates(ctx context.Context) ([]model.Offer, error) {
	rows, err := r.pool.Query(ctx, `
SELECT o.id, o.email, o.secret, o.amount, o.charity_id, o.country_id, o.confirmed, o.created_at
FROM offers o
WHERE o.confirmed
	AND NOT EXISTS (
		SELECT 1
		FROM matches m
		WHERE m.new_offer_id = o.id OR m.old_offer_id = o.id
	)
ORDER BY o.created_at, o.id
`)
	if err != nil {
		return nil, fmt.Errorf("list match candidates: %w", err)
	}
	defer rows.Close()

	return scanOffers(rows)
}

func (r *OfferRepo) ListUnconfirmed(ctx context.Context) ([]model.Offer, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, email, secret, amount, charity_id, country_id, confirmed, created_at
FROM offers
WHERE NOT confirmed
ORDER BY created_at, id
`)
	if err != nil {
		return nil, fmt.Errorf("list unconfirmed offers: %w", err)
	}
	defer rows.Close()

	return scanOffers(rows)
}

func (r *OfferRepo) FindByID(ctx context.Context, id int64) (model.Offer, error) {
	if id <= 0 {
		return model.Offer{}, fmt.Errorf("invalid offer id")
	}

	var offer model.Offer
	err := r.pool.QueryRow(ctx, `
SELECT id, email, secret, amount, charity_id, country_id, confirmed, created_at
FROM offers
WHERE id = $1
`, id).Scan(
		&offer.ID,
		&offer.Email,
		&offer.Secret,
		&offer.Amount,
		&offer.CharityID,
		&offer.CountryID,
		&offer.Confirmed,
		&offer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Offer{}, ErrOfferNotFound
		}
		return model.Offer{}, fmt.Errorf("find offer by id: %w", err)
	}

	return offer, nil
}

// DeleteByIDs removes offers together with any matches still referencing
// them, so no match row is left pointing at a missing offer.
func (r *OfferRepo) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
DELETE FROM matches
WHERE new_offer_id = ANY($1) OR old_offer_id = ANY($1)
`, ids); err != nil {
			return fmt.Errorf("delete matches for offers: %w", err)
		}

		tag, err := tx.Exec(ctx, `
DELETE FROM offers
WHERE id = ANY($1)
`, ids)
		if err != nil {
			return fmt.Errorf("delete offers: %w", err)
		}

		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func scanOffers(rows pgx.Rows) ([]model.Offer, error) {
	offers := make([]model.Offer, 0, 16)
	for rows.Next() {
		var offer model.Offer
		if err := rows.Scan(
			&offer.ID,
			&offer.Email,
			&offer.Secret,
			&offer.Amount,
			&offer.CharityID,
			&offer.CountryID,
			&offer.Confirmed,
			&offer.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, offer)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate offers: %w", rows.Err())
	}

	return offers, nil
}
