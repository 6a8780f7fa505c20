package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/retailpoint/purchasing-backend/api/middleware"
	cartsvc "github.com/retailpoint/purchasing-backend/internal/cart"
)

type stubCartService struct {
	view    *cartsvc.View
	cleared bool
	err     error
}

func (s *stubCartService) View(ctx context.Context, userID uuid.UUID) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	s.cleared = true
	return s.err
}

func authedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestCartAddItemReturnsOK(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{view: &cartsvc.View{
		ID: uuid.New(),
		Items: []cartsvc.ItemView{{
			ID:        uuid.New(),
			ProductID: productID,
			Quantity:  2,
			UnitPrice: "10.00",
			LineTotal: "20.00",
			Available: true,
		}},
		Subtotal:  "20.00",
		ItemCount: 2,
	}}
	handler := CartAddItem(svc, nil)

	payload := []byte(`{"product_id":"` + productID.String() + `","quantity":2}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/cart", payload))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data cartsvc.View `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Subtotal != "20.00" {
		t.Fatalf("expected subtotal 20.00 got %s", envelope.Data.Subtotal)
	}
}

func TestCartClearReturnsEmptyCart(t *testing.T) {
	svc := &stubCartService{view: &cartsvc.View{
		ID:        uuid.New(),
		Items:     []cartsvc.ItemView{},
		Subtotal:  "0.00",
		ItemCount: 0,
	}}
	handler := CartClear(svc, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/v1/cart", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !svc.cleared {
		t.Fatal("expected clear to be called")
	}

	var envelope struct {
		Data cartsvc.View `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Subtotal != "0.00" || envelope.Data.ItemCount != 0 {
		t.Fatalf("expected empty cart, got %+v", envelope.Data)
	}
}

func TestCartAddItemMissingUserContext(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	payload := []byte(`{"product_id":"` + uuid.NewString() + `","quantity":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
