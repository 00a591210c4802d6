package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ZoeWilliams/donationswap/internal/domain/enums"
	"github.com/ZoeWilliams/donationswap/internal/domain/model"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// Create inserts a match with both sides undecided.
func (r *MatchRepo) Create(ctx context.Context, secret string, newOfferID, oldOfferID int64) (model.Match, error) {
	if secret == "" {
		return model.Match{}, fmt.Errorf("match secret is required")
	}
	if newOfferID <= 0 || oldOfferID <= 0 {
		return model.Match{}, fmt.Errorf("invalid match offer ids")
	}

	match := model.Match{
		Secret:     secret,
		NewOfferID: newOfferID,
		OldOfferID: oldOfferID,
		NewAgrees:  enums.AgreementUndecided,
		OldAgrees:  enums.AgreementUndecided,
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO matches (
	secret,
	new_offer_id,
	old_offer_id,
	new_agrees,
	old_agrees,
	created_at
) VALUES ($1, $2, $3, $4, $5, NOW())
RETURNING id, created_at
`, secret, newOfferID, oldOfferID, string(match.NewAgrees), string(match.OldAgrees)).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return model.Match{}, fmt.Errorf("create match: %w", err)
	}

	return match, nil
}

func (r *MatchRepo) ListAll(ctx context.Context) ([]model.Match, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, secret, new_offer_id, old_offer_id, new_agrees, old_agrees, created_at
FROM matches
ORDER BY created_at, id
`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]model.Match, 0, 16)
	for rows.Next() {
		var m model.Match
		var newAgrees, oldAgrees string
		if err := rows.Scan(
			&m.ID,
			&m.Secret,
			&m.NewOfferID,
			&m.OldOfferID,
			&newAgrees,
			&oldAgrees,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.NewAgrees = enums.Agreement(newAgrees)
		m.OldAgrees = enums.Agreement(oldAgrees)
		matches = append(matches, m)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return matches, nil
}

func (r *MatchRepo) DeleteByID(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("invalid match id")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM matches
WHERE id = $1
`, id)
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *MatchRepo) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM matches
WHERE id = ANY($1)
`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete matches: %w", err)
	}

	return tag.RowsAffected(), nil
}
