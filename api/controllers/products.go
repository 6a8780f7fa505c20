package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/retailpoint/purchasing-backend/api/responses"
	"github.com/retailpoint/purchasing-backend/api/validators"
	"github.com/retailpoint/purchasing-backend/internal/catalog"
	"github.com/retailpoint/purchasing-backend/pkg/db/models"
	pkgerrors "github.com/retailpoint/purchasing-backend/pkg/errors"
	"github.com/retailpoint/purchasing-backend/pkg/logger"
	"github.com/retailpoint/purchasing-backend/pkg/pagination"
)

type productResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku,omitempty"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
}

func newProductResponse(product models.Product) productResponse {
	return productResponse{
		ID:          product.ID,
		Name:        product.Name,
		SKU:         product.SKU,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		InStock:     product.Quantity > 0,
		CreatedAt:   product.CreatedAt,
	}
}

// ProductList returns the active catalog, newest first.
func ProductList(repo catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, nextCursor, err := repo.ListActive(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]productResponse, 0, len(products))
		for _, product := range products {
			views = append(views, newProductResponse(product))
		}
		responses.WriteSuccess(w, map[string]any{
			"products":    views,
			"next_cursor": nextCursor,
		})
	}
}

// ProductDetail returns one active product.
func ProductDetail(repo catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := repo.FindActiveByID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}
