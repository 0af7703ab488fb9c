package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubOrderService struct {
	userID uuid.UUID
	input  *orders.PlaceOrderInput
	err    error
}

func (s *stubOrderService) PlaceOrder(_ context.Context, userID uuid.UUID, input orders.PlaceOrderInput) (*orders.OrderResponse, error) {
	s.userID = userID
	s.input = &input
	if s.err != nil {
		return nil, s.err
	}
	now := time.Now().UTC()
	return &orders.OrderResponse{
		ID:         uuid.New(),
		UserID:     userID,
		Status:     enums.OrderStatusPending,
		TotalPrice: decimal.RequireFromString("20.00"),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *stubOrderService) FindUserOrders(_ context.Context, userID uuid.UUID) ([]orders.OrderSummary, error) {
	s.userID = userID
	if s.err != nil {
		return nil, s.err
	}
	return []orders.OrderSummary{{ID: uuid.New(), Status: enums.OrderStatusPending, TotalPrice: decimal.NewFromInt(5), CreatedAt: time.Now()}}, nil
}

func TestOrderCreate(t *testing.T) {
	svc := &stubOrderService{}
	productID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/orders",
		strings.NewReader(`{"items":[{"productId":"`+productID+`","quantity":2}]}`))
	req, userID := withPrincipal(req, enums.RoleCustomer)
	rec := httptest.NewRecorder()

	OrderCreate(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "Order created successfully", env.Message)
	assert.Equal(t, userID, svc.userID)
	require.NotNil(t, svc.input)
	assert.Equal(t, []orders.OrderItemInput{{ProductID: productID, Quantity: 2}}, svc.input.Items)

	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Object, &body))
	assert.Equal(t, userID.String(), body["userId"])
}

func TestOrderCreateRequiresPrincipal(t *testing.T) {
	svc := &stubOrderService{}
	rec := httptest.NewRecorder()
	OrderCreate(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, svc.input)
}

func TestOrderCreateValidation(t *testing.T) {
	cases := map[string][]string{
		`{"items":[]}`: {"Order must include at least one item"},
		`{}`:           {"Order must include at least one item"},
		`{"items":[{"productId":"x","quantity":0}]}`:          {"Quantity must be at least 1"},
		`{"items":[{"quantity":1}]}`:                          {"Product ID is required"},
		`{"items":"nope"}`:                                    {"Items must be an array"},
		`{"items":[{"productId":"x","quantity":2147483648}]}`: {"Quantity cannot exceed 2147483647"},
	}
	for body, want := range cases {
		svc := &stubOrderService{}
		req, _ := withPrincipal(httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)), enums.RoleCustomer)
		rec := httptest.NewRecorder()

		OrderCreate(svc, nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, want, decode(t, rec).Errors, body)
		assert.Nil(t, svc.input, body)
	}
}

func TestOrderCreateInsufficientStock(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeValidation, "Insufficient stock for Widget")}
	req, _ := withPrincipal(httptest.NewRequest(http.MethodPost, "/orders",
		strings.NewReader(`{"items":[{"productId":"`+uuid.NewString()+`","quantity":99}]}`)), enums.RoleCustomer)
	rec := httptest.NewRecorder()

	OrderCreate(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient stock for Widget", decode(t, rec).Message)
}

func TestOrderListMine(t *testing.T) {
	svc := &stubOrderService{}
	req, userID := withPrincipal(httptest.NewRequest(http.MethodGet, "/orders", nil), enums.RoleCustomer)
	rec := httptest.NewRecorder()

	OrderListMine(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "Orders fetched successfully", env.Message)
	assert.Equal(t, userID, svc.userID)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Object, &list))
	assert.Len(t, list, 1)

	rec = httptest.NewRecorder()
	OrderListMine(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
