package domain

import (
	"time"
)

// FavoriteProduct represents a client's saved reference to an external catalog
// product, with a snapshot of its display fields taken at creation time. The
// snapshot is never refreshed from the catalog afterwards.
type FavoriteProduct struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	Title     string    `json:"title" db:"title"`
	Price     float64   `json:"price" db:"price"`
	Image     string    `json:"image" db:"image"`
	Review    *float64  `json:"review" db:"review"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CatalogProduct is a product record as returned by the external catalog API.
// It is never persisted; only the fields below are consumed.
type CatalogProduct struct {
	ID     int64          `json:"id"`
	Title  string         `json:"title"`
	Price  float64        `json:"price"`
	Image  string         `json:"image"`
	Rating *CatalogRating `json:"rating,omitempty"`
}

// CatalogRating is the optional nested rating on a catalog product. Its rate
// value is stored as the favorite's review when present.
type CatalogRating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}
