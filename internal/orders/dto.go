package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// MaxQuantity bounds a single line and the merged quantity per product. It
// matches the integer column holding quantities and stock.
const MaxQuantity = 2147483647

// OrderItemInput is one requested line.
type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=2147483647"`
}

// PlaceOrderInput is the order placement payload.
type PlaceOrderInput struct {
	Items []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// ProductSnapshot is the product summary embedded in order items.
type ProductSnapshot struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category *string         `json:"category"`
}

// OrderItemResponse is one persisted order line.
type OrderItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	OrderID   uuid.UUID        `json:"orderId"`
	ProductID uuid.UUID        `json:"productId"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	Product   *ProductSnapshot `json:"product"`
}

// OrderResponse is the full order returned after placement.
type OrderResponse struct {
	ID         uuid.UUID           `json:"id"`
	UserID     uuid.UUID           `json:"userId"`
	Status     enums.OrderStatus   `json:"status"`
	TotalPrice decimal.Decimal     `json:"totalPrice"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
	OrderItems []OrderItemResponse `json:"orderItems"`
}

// OrderSummary is the list shape for a user's orders.
type OrderSummary struct {
	ID         uuid.UUID         `json:"id"`
	Status     enums.OrderStatus `json:"status"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func toResponse(order *models.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		resp := OrderItemResponse{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		if item.Product != nil {
			resp.Product = &ProductSnapshot{
				ID:       item.Product.ID,
				Name:     item.Product.Name,
				Price:    item.Product.Price,
				Category: item.Product.Category,
			}
		}
		items = append(items, resp)
	}
	return &OrderResponse{
		ID:         order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
		OrderItems: items,
	}
}

func toSummary(order models.Order) OrderSummary {
	return OrderSummary{
		ID:         order.ID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
	}
}
