package models

// Merchant is the shop selling a product.
type Merchant struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Domain string  `json:"domain"`
	Score  float64 `json:"score"`
}

// Cashback is the commission attributed to the referring agent.
type Cashback struct {
	RatePercent float64 `json:"rate_percent"`
	Amount      float64 `json:"amount"`
	Kind        string  `json:"kind"`
}

// Product is the normalized result shape. Records from the live upstream
// and from the static catalog are both coerced into this before ranking.
type Product struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Brand        string   `json:"brand"`
	Price        float64  `json:"price"`
	InStock      bool     `json:"in_stock"`
	Merchant     Merchant `json:"merchant"`
	Cashback     Cashback `json:"cashback"`
	ImageURL     string   `json:"image_url,omitempty"`
	ProductURL   string   `json:"product_url,omitempty"`
	AffiliateURL string   `json:"affiliate_url,omitempty"`
}
