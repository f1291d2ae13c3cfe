package catalog

import (
	"testing"
)

func TestNormalizeBodyFieldVariants(t *testing.T) {
	body := []byte(`{"products":[{
		"product_id": "p1",
		"name": "Air Max 270",
		"merchant": "Nike Store",
		"domain": "nike.com",
		"commission_rate": 8.5,
		"image": "https://cdn.example/p1.jpg",
		"product_url": "https://nike.com/p1",
		"price": 150.0
	}]}`)

	got := NormalizeBody(body)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	p := got[0]
	if p.ID != "p1" {
		t.Errorf("id = %q, want alternate product_id field", p.ID)
	}
	if p.Title != "Air Max 270" {
		t.Errorf("title = %q, want alternate name field", p.Title)
	}
	if p.Merchant.Name != "Nike Store" {
		t.Errorf("merchant = %q", p.Merchant.Name)
	}
	if p.Merchant.Domain != "nike.com" {
		t.Errorf("domain = %q", p.Merchant.Domain)
	}
	if p.Cashback.RatePercent != 8.5 {
		t.Errorf("rate = %v, want alternate commission_rate field", p.Cashback.RatePercent)
	}
	if p.ImageURL != "https://cdn.example/p1.jpg" {
		t.Errorf("image = %q", p.ImageURL)
	}
	if p.ProductURL != "https://nike.com/p1" {
		t.Errorf("url = %q", p.ProductURL)
	}
}

func TestNormalizeBodyPrimaryFieldsWin(t *testing.T) {
	body := []byte(`{"products":[{
		"id": "primary",
		"product_id": "secondary",
		"title": "Primary Title",
		"name": "Secondary Name"
	}]}`)

	p := NormalizeBody(body)[0]
	if p.ID != "primary" || p.Title != "Primary Title" {
		t.Errorf("got id=%q title=%q, first-listed field must win", p.ID, p.Title)
	}
}

func TestNormalizeBodyDerivedValues(t *testing.T) {
	body := []byte(`{"results":[{
		"id": "p1",
		"title": "Running Shoes",
		"merchant_name": "Foot Locker",
		"price": 100.0,
		"cashback_rate": 5.0
	}]}`)

	p := NormalizeBody(body)[0]
	// 100 * 5 rounded, then /100 = 5.00 cashback.
	if p.Cashback.Amount != 5.0 {
		t.Errorf("amount = %v, want 5.0 derived from price and rate", p.Cashback.Amount)
	}
	if p.Brand != "Foot Locker" {
		t.Errorf("brand = %q, want known brand pulled from merchant", p.Brand)
	}
	if !p.InStock {
		t.Error("in_stock must default to true when absent")
	}
	if p.Cashback.Kind != "percentage" {
		t.Errorf("kind = %q", p.Cashback.Kind)
	}
}

func TestNormalizeBodyExplicitOutOfStock(t *testing.T) {
	body := []byte(`{"products":[{"id":"p1","title":"X","in_stock":false}]}`)
	if p := NormalizeBody(body)[0]; p.InStock {
		t.Error("explicit in_stock:false was not honored")
	}
}

func TestNormalizeBodySyntheticIDs(t *testing.T) {
	body := []byte(`{"products":[{"title":"A"},{"title":"B"}]}`)
	got := NormalizeBody(body)
	if got[0].ID != "fiber_0" || got[1].ID != "fiber_1" {
		t.Errorf("ids = %q, %q, want positional synthetic ids", got[0].ID, got[1].ID)
	}
}

func TestNormalizeBodyUnusableBodies(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"products":[`},
		{"no product array", `{"status":"ok"}`},
		{"empty products", `{"products":[]}`},
		{"empty results", `{"results":[]}`},
		{"top-level array", `[1,2,3]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeBody([]byte(tc.body)); got != nil {
				t.Errorf("got %d products, want nil", len(got))
			}
		})
	}
}

func TestNormalizeBodyMissingStringsDefault(t *testing.T) {
	body := []byte(`{"products":[{"id":"p1"}]}`)
	p := NormalizeBody(body)[0]
	if p.Title != "Unknown Product" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Merchant.Name != "Unknown" {
		t.Errorf("merchant = %q", p.Merchant.Name)
	}
}
