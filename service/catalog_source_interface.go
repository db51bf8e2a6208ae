package service

import (
	"context"
	"net/url"

	"trader-storefront/models"
)

// CatalogSource defines the contract for fetching a price catalog
type CatalogSource interface {
	FetchCatalog(ctx context.Context) (models.Catalog, error)
}

// OrderPoster defines the contract for sending an encoded order.
// It returns the order id assigned by the endpoint (possibly empty).
type OrderPoster interface {
	PostOrder(ctx context.Context, form url.Values) (string, error)
}
