package catalog

import "github.com/shopspring/decimal"

// sampleProducts is the offline fallback served when the storefront cannot be
// reached. Mirrors the seed products of the storefront so a dev till works
// without the upstream running.
func sampleProducts() []Product {
	cap30 := 30.0
	return []Product{
		{
			ID:      "sample-tshirt",
			Title:   "Classic Cotton T-Shirt",
			SKU:     "TSHIRT-001",
			Price:   decimal.NewFromInt(1500),
			InStock: 0,
			Status:  StatusPublished,
			Variants: []Variant{
				{Color: "Black", Size: "M", SKU: "TSHIRT-001-BLK-M", Barcode: "6001000000017", Price: decimal.NewFromInt(1500), Stock: 12},
				{Color: "White", Size: "L", SKU: "TSHIRT-001-WHT-L", Barcode: "6001000000024", Price: decimal.NewFromInt(1500), Stock: 7},
			},
		},
		{
			ID:                 "sample-mug",
			Title:              "Stoneware Mug",
			SKU:                "MUG-014",
			Barcode:            "6001000000121",
			Price:              decimal.NewFromInt(800),
			InStock:            40,
			Status:             StatusPublished,
			MaxDiscountPercent: &cap30,
		},
		{
			ID:      "sample-notebook",
			Title:   "A5 Dotted Notebook",
			SKU:     "NOTE-203",
			Barcode: "6001000000213",
			Price:   decimal.NewFromInt(1200),
			InStock: 25,
			Status:  StatusPublished,
		},
	}
}
