package catalog

import "github.com/fiberagent/gateway/internal/models"

// StaticCatalog is the fallback product list served when the live merchant
// API yields nothing usable.
func StaticCatalog() []models.Product {
	return []models.Product{
		staticProduct("nike_pegasus_41", "Nike Pegasus 41 — Men's Road Running Shoes", "Nike", 145.00, "NIKE", "nike.com", 0.65, 0.94),
		staticProduct("nike_vomero_premium", "Nike Vomero Premium — Men's Road Running Shoes", "Nike", 230.00, "NIKE", "nike.com", 0.65, 1.50),
		staticProduct("nike_vomero5_fl", "Women's Nike Zoom Vomero 5 — Casual Shoes", "Nike", 170.00, "Finish Line", "finishline.com", 3.25, 5.53),
		staticProduct("nike_airmax270", "Nike Air Max 270", "Nike", 170.00, "NIKE", "nike.com", 0.65, 1.11),
		staticProduct("nike_af1_fl", "Men's Nike Air Force 1 '07 LV8 — Casual Shoes", "Nike", 115.00, "Finish Line", "finishline.com", 3.25, 3.74),
		staticProduct("adidas_ultraboost", "Adidas Ultraboost 5 Running Shoes", "Adidas", 190.00, "Adidas", "adidas.com", 3.5, 6.65),
		staticProduct("adidas_samba", "Adidas Samba OG Shoes", "Adidas", 110.00, "Adidas", "adidas.com", 3.5, 3.85),
		staticProduct("adidas_gazelle", "Adidas Gazelle Indoor Shoes", "Adidas", 120.00, "Adidas", "adidas.com", 3.5, 4.20),
		staticProduct("on_creatine", "Optimum Nutrition Creatine Monohydrate — 120 Servings", "Optimum Nutrition", 32.99, "Amazon", "amazon.com", 1.0, 0.33),
		staticProduct("muscletech_creatine", "MuscleTech Cell-Tech Creatine Monohydrate — 6lbs", "MuscleTech", 49.97, "Bodybuilding.com", "bodybuilding.com", 5.0, 2.50),
		staticProduct("gnc_creatine", "GNC Pro Performance Creatine Monohydrate — Unflavored 300g", "GNC", 19.99, "GNC", "gnc.com", 4.0, 0.80),
		staticProduct("sony_xm5", "Sony WH-1000XM5 Wireless Noise Canceling Headphones", "Sony", 348.00, "Amazon", "amazon.com", 1.0, 3.48),
		staticProduct("airpods_pro2", "Apple AirPods Pro 2 with USB-C", "Apple", 249.00, "Best Buy", "bestbuy.com", 1.5, 3.74),
		staticProduct("tnf_nuptse", "The North Face Nuptse 1996 Retro Puffer Jacket", "The North Face", 330.00, "The North Face", "thenorthface.com", 2.5, 8.25),
		staticProduct("lulu_abc", "lululemon ABC Classic-Fit Pants — Warpstreme", "lululemon", 138.00, "lululemon", "lululemon.com", 3.0, 4.14),
	}
}

func staticProduct(id, title, brand string, price float64, merchant, domain string, rate, amount float64) models.Product {
	return models.Product{
		ID:      id,
		Title:   title,
		Brand:   brand,
		Price:   price,
		InStock: true,
		Merchant: models.Merchant{
			Name:   merchant,
			Domain: domain,
		},
		Cashback: models.Cashback{
			RatePercent: rate,
			Amount:      amount,
			Kind:        "percentage",
		},
	}
}
