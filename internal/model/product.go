package model

import "time"

// Product is a sellable catalog entry.
//
// Images holds URLs, not binary data — actual image hosting lives outside
// this service. Sizes is the set of variants the product can be bought in
// (e.g. ["S", "M", "L"]); an empty slice means the product is not sized and
// cart additions must not specify a size.
type Product struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price"       db:"price"`
	Images      []string  `json:"images"      db:"images"`
	Category    string    `json:"category"    db:"category"`
	SubCategory string    `json:"subCategory" db:"sub_category"`
	Sizes       []string  `json:"sizes"       db:"sizes"`
	Bestseller  bool      `json:"bestseller"  db:"bestseller"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// HasSize reports whether size is one of the product's defined sizes.
// Comparison is case-insensitive; sizes are normalized to upper case at
// the service boundary, so a plain equality check is enough here.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}
