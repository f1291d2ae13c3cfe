package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/fiberagent/gateway/internal/models"
)

// The upstream API has shipped several near-duplicate response shapes over
// time. Each attribute is extracted by trying field names in priority
// order; the first present field wins.
var (
	idFields           = []string{"id", "product_id"}
	titleFields        = []string{"title", "name"}
	merchantNameFields = []string{"merchant_name", "merchant"}
	domainFields       = []string{"merchant_domain", "domain"}
	rateFields         = []string{"cashback_rate", "commission_rate"}
	imageFields        = []string{"image_url", "image", "thumbnail"}
	urlFields          = []string{"url", "product_url"}
)

// knownBrands is used to derive a brand from the merchant name when the
// record carries no brand field.
var knownBrands = []string{
	"Nike", "Adidas", "Puma", "Reebok", "New Balance", "Under Armour",
	"Finish Line", "Foot Locker",
}

func firstString(r gjson.Result, fields []string, fallback string) string {
	for _, f := range fields {
		if v := r.Get(f); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return fallback
}

func firstFloat(r gjson.Result, fields []string) float64 {
	for _, f := range fields {
		if v := r.Get(f); v.Exists() {
			return v.Float()
		}
	}
	return 0
}

func brandFromMerchant(merchantName string) string {
	lower := strings.ToLower(merchantName)
	for _, b := range knownBrands {
		if strings.Contains(lower, strings.ToLower(b)) {
			return b
		}
	}
	return merchantName
}

// normalizeRecord coerces one upstream product record into the normalized
// Product shape. Missing numeric fields default to 0, missing strings to
// empty or "Unknown".
func normalizeRecord(r gjson.Result) models.Product {
	price := r.Get("price").Float()
	rate := firstFloat(r, rateFields)

	amount := r.Get("cashback_amount").Float()
	if amount == 0 && price > 0 && rate > 0 {
		amount = math.Round(price*rate) / 100
	}

	merchantName := firstString(r, merchantNameFields, "Unknown")
	brand := firstString(r, []string{"brand"}, "")
	if brand == "" {
		brand = brandFromMerchant(merchantName)
	}

	inStock := true
	if v := r.Get("in_stock"); v.Exists() && !v.Bool() {
		inStock = false
	}

	return models.Product{
		ID:      firstString(r, idFields, ""),
		Title:   firstString(r, titleFields, "Unknown Product"),
		Brand:   brand,
		Price:   price,
		InStock: inStock,
		Merchant: models.Merchant{
			ID:     int(r.Get("merchant_id").Int()),
			Name:   merchantName,
			Domain: firstString(r, domainFields, ""),
			Score:  r.Get("merchant_score").Float(),
		},
		Cashback: models.Cashback{
			RatePercent: rate,
			Amount:      amount,
			Kind:        "percentage",
		},
		ImageURL:     firstString(r, imageFields, ""),
		ProductURL:   firstString(r, urlFields, ""),
		AffiliateURL: firstString(r, []string{"affiliate_url"}, ""),
	}
}

// NormalizeBody extracts products from an upstream response body. Records
// may arrive under "products" or "results"; a body with neither, or with
// an empty array, yields nil.
func NormalizeBody(body []byte) []models.Product {
	if !gjson.ValidBytes(body) {
		return nil
	}
	root := gjson.ParseBytes(body)
	arr := root.Get("products")
	if !arr.IsArray() {
		arr = root.Get("results")
	}
	if !arr.IsArray() {
		return nil
	}
	records := arr.Array()
	if len(records) == 0 {
		return nil
	}
	out := make([]models.Product, 0, len(records))
	for i, rec := range records {
		p := normalizeRecord(rec)
		if p.ID == "" {
			p.ID = syntheticID(i)
		}
		out = append(out, p)
	}
	return out
}

func syntheticID(i int) string {
	return "fiber_" + strconv.Itoa(i)
}
