package model

type Currency struct {
	ID   int64  `json:"id"`
	ISO  string `json:"iso"`
	Name string `json:"name"`
}

type Country struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Currency Currency `json:"currency"`
}
