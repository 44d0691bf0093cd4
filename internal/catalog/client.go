package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"favorites-api/internal/domain"

	"github.com/go-resty/resty/v2"
)

// ErrProductNotFound is returned when the catalog has no product with the
// requested id. Transport failures and non-2xx responses are reported the
// same way: the favorites flow treats an unreachable catalog and an absent
// product identically.
var ErrProductNotFound = errors.New("product not found")

// ProductLookup fetches product records from the external catalog service
type ProductLookup interface {
	GetProduct(ctx context.Context, productID int64) (*domain.CatalogProduct, error)
}

// Config holds the catalog client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

type client struct {
	http *resty.Client
}

// NewClient creates a catalog client against the configured base URL
func NewClient(cfg Config) ProductLookup {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://fakestoreapi.com/products"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &client{http: cli}
}

// GetProduct fetches a single product by its numeric id
func (c *client) GetProduct(ctx context.Context, productID int64) (*domain.CatalogProduct, error) {
	product := &domain.CatalogProduct{}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(product).
		Get(fmt.Sprintf("/%d", productID))
	if err != nil {
		return nil, ErrProductNotFound
	}
	if !resp.IsSuccess() {
		return nil, ErrProductNotFound
	}

	return product, nil
}
