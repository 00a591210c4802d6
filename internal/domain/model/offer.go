package model

import "time"

type Offer struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Secret    string    `json:"secret"`
	Amount    int64     `json:"amount"`
	CharityID int64     `json:"charity_id"`
	CountryID int64     `json:"country_id"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}
