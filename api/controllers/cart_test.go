package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/homegoods-vn/homegoods-backend/api/middleware"
	cartsvc "github.com/homegoods-vn/homegoods-backend/internal/cart"
	pkgerrors "github.com/homegoods-vn/homegoods-backend/pkg/errors"
)

type stubCartService struct {
	record *cartsvc.CartDTO
	err    error
}

func (s stubCartService) GetCart(ctx context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.record, s.err
}

func (s stubCartService) AddItem(ctx context.Context, userID uuid.UUID, req cartsvc.AddItemRequest) (*cartsvc.CartDTO, error) {
	return s.record, s.err
}

func (s stubCartService) UpdateItem(ctx context.Context, actor cartsvc.Actor, itemID uuid.UUID, req cartsvc.UpdateItemRequest) (*cartsvc.CartDTO, error) {
	return s.record, s.err
}

func (s stubCartService) RemoveItem(ctx context.Context, actor cartsvc.Actor, itemID uuid.UUID) (*cartsvc.CartDTO, error) {
	return s.record, s.err
}

func authedRequest(method, target string, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithIdentity(req.Context(), userID.String(), "shopper@example.com", "USER"))
}

func TestCartFetchSuccess(t *testing.T) {
	userID := uuid.New()
	record := &cartsvc.CartDTO{ID: uuid.New(), UserID: userID, TotalPrice: 120_000}
	handler := CartFetch(stubCartService{record: record}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/cart", "", userID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != record.ID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.ID)
	}
	if envelope.Data.TotalPrice != 120_000 {
		t.Fatalf("unexpected total: %d", envelope.Data.TotalPrice)
	}
}

func TestCartFetchMissingIdentity(t *testing.T) {
	handler := CartFetch(stubCartService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemRejectsBadBody(t *testing.T) {
	handler := CartAddItem(stubCartService{}, nil)
	req := authedRequest(http.MethodPost, "/api/cart/items", `{"variant_id":"","quantity":0}`, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemUnknownVariant(t *testing.T) {
	handler := CartAddItem(stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "variant not available")}, nil)
	body := `{"variant_id":"` + uuid.NewString() + `","quantity":1}`
	req := authedRequest(http.MethodPost, "/api/cart/items", body, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartUpdateItemRejectsBadID(t *testing.T) {
	handler := CartUpdateItem(stubCartService{}, nil)
	req := authedRequest(http.MethodPut, "/api/cart/items/not-a-uuid", `{"quantity":2}`, uuid.New())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
