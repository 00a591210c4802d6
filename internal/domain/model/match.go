package model

import (
	"time"

	"github.com/ZoeWilliams/donationswap/internal/domain/enums"
)

type Match struct {
	ID         int64           `json:"id"`
	Secret     string          `json:"secret"`
	NewOfferID int64           `json:"new_offer_id"`
	OldOfferID int64           `json:"old_offer_id"`
	NewAgrees  enums.Agreement `json:"new_agrees"`
	OldAgrees  enums.Agreement `json:"old_agrees"`
	CreatedAt  time.Time       `json:"created_at"`
}
