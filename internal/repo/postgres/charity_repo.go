package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ZoeWilliams/donationswap/internal/domain/model"
)

var (
	ErrCharityNotFound      = errors.New("charity not found")
	ErrInstructionsNotFound = errors.New("donation instructions not found")
)

type CharityRepo struct {
	pool *pgxpool.Pool
}

func NewCharityRepo(pool *pgxpool.Pool) *CharityRepo {
	return &CharityRepo{pool: pool}
}

func (r *CharityRepo) FindByID(ctx context.Context, id int64) (model.Charity, error) {
	if id <= 0 {
		return model.Charity{}, fmt.Errorf("invalid charity id")
	}

	var charity model.Charity
	err := r.pool.QueryRow(ctx, `
SELECT id, name
FROM charities
WHERE id = $1
`, id).Scan(&charity.ID, &charity.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Charity{}, ErrCharityNotFound
		}
		return model.Charity{}, fmt.Errorf("find charity by id: %w", err)
	}

	return charity, nil
}

// FindInstructions returns the donation instructions for a charity in a
// country. ErrInstructionsNotFound means the pair has no entry yet.
func (r *CharityRepo) FindInstructions(ctx context.Context, charityID, countryID int64) (string, error) {
	if charityID <= 0 || countryID <= 0 {
		return "", fmt.Errorf("invalid charity or country id")
	}

	var instructions string
	err := r.pool.QueryRow(ctx, `
SELECT instructions
FROM charities_in_countries
WHERE charity_id = $1 AND country_id = $2
`, charityID, countryID).Scan(&instructions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInstructionsNotFound
		}
		return "", fmt.Errorf("find donation instructions: %w", err)
	}

	return instructions, nil
}
