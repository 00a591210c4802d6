package model

type Charity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CharityInCountry struct {
	CharityID    int64  `json:"charity_id"`
	CountryID    int64  `json:"country_id"`
	Instructions string `json:"instructions"`
}
