package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ZoeWilliams/donationswap/internal/domain/model"
)

var ErrCountryNotFound = errors.New("country not found")

type CountryRepo struct {
	pool *pgxpool.Pool
}

func NewCountryRepo(pool *pgxpool.Pool) *CountryRepo {
	return &CountryRepo{pool: pool}
}

// FindByID returns a country with its currency resolved.
func (r *CountryRepo) FindByID(ctx context.Context, id int64) (model.Country, error) {
	if id <= 0 {
		return model.Country{}, fmt.Errorf("invalid country id")
	}

	var country model.Country
	err := r.pool.QueryRow(ctx, `
SELECT c.id, c.name, cur.id, cur.iso, cur.name
FROM countries c
JOIN currencies cur ON cur.id = c.currency_id
WHERE c.id = $1
`, id).Scan(
		&country.ID,
		&country.Name,
		&country.Currency.ID,
		&country.Currency.ISO,
		&country.Currency.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Country{}, ErrCountryNotFound
		}
		return model.Country{}, fmt.Errorf("find country by id: %w", err)
	}

	return country, nil
}
