package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/events"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service places orders and lists a user's orders.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderResponse, error)
	FindUserOrders(ctx context.Context, userID uuid.UUID) ([]OrderSummary, error)
}

// ServiceParams bundles the order service dependencies. Publisher, Cache,
// Metrics and Logger are optional.
type ServiceParams struct {
	DB        txRunner
	Orders    *Repository
	Products  *product.Repository
	Publisher events.Publisher
	Cache     catalogInvalidator
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
	Clock     func() time.Time
}

type service struct {
	db        txRunner
	orders    *Repository
	products  *product.Repository
	publisher events.Publisher
	cache     catalogInvalidator
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		db:        params.DB,
		orders:    params.Orders,
		products:  params.Products,
		publisher: publisher,
		cache:     params.Cache,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       clock,
	}, nil
}

// line is a requested product with its quantities merged across duplicate
// entries. Lines keep the order in which each product first appears.
type line struct {
	rawID    string
	id       uuid.UUID
	valid    bool
	quantity int
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderResponse, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Order must include at least one item").
			WithDetails([]string{"Order must include at least one item"})
	}

	lines, err := mergeLines(input.Items)
	if err != nil {
		s.metrics.ObserveRejected(metrics.OrderOutcomeInvalid)
		return nil, err
	}

	var placed *models.Order
	units := 0
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.products.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		locked := make(map[uuid.UUID]*models.Product, len(lines))
		for _, l := range lockOrder(lines) {
			p, err := productRepo.FindByIDForUpdate(ctx, l.id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock product")
			}
			locked[l.id] = p
		}

		total := decimal.Zero
		prices := make(map[uuid.UUID]decimal.Decimal, len(lines))
		names := make(map[uuid.UUID]string, len(lines))
		for _, l := range lines {
			p, ok := locked[l.id]
			if !l.valid || !ok {
				return productNotFound(l.rawID)
			}
			if p.Stock < l.quantity {
				return insufficientStock(p.Name)
			}
			prices[p.ID] = p.Price
			names[p.ID] = p.Name
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.quantity))))
		}

		now := s.now()
		order, err := orderRepo.CreateOrder(ctx, &models.Order{
			UserID:     userID,
			Status:     enums.OrderStatusPending,
			TotalPrice: total,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert order")
		}

		items := make([]models.OrderItem, 0, len(input.Items))
		for _, requested := range input.Items {
			id := uuid.MustParse(strings.TrimSpace(requested.ProductID))
			items = append(items, models.OrderItem{
				OrderID:   order.ID,
				ProductID: id,
				Quantity:  requested.Quantity,
				UnitPrice: prices[id],
				CreatedAt: now,
			})
			units += requested.Quantity
		}
		if err := orderRepo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert order items")
		}

		for _, l := range lines {
			ok, err := productRepo.DecrementStock(ctx, l.id, l.quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !ok {
				return insufficientStock(names[l.id])
			}
		}

		placed, err = orderRepo.FindWithItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
		}
		return nil
	})
	if err != nil {
		s.observeFailure(err)
		return nil, err
	}

	s.afterCommit(ctx, placed, units)
	return toResponse(placed), nil
}

func (s *service) FindUserOrders(ctx context.Context, userID uuid.UUID) ([]OrderSummary, error) {
	rows, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSummary(row))
	}
	return out, nil
}

// afterCommit runs the side effects of a placed order. None of them can fail the request.
func (s *service) afterCommit(ctx context.Context, order *models.Order, units int) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.metrics.ObservePlaced(order.TotalPrice, units)

	env, err := events.NewEnvelope(events.TypeOrderPlaced, order.ID.String(), s.now(), newOrderPlacedEvent(order))
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID.String()), "orders.event_publish_failed", err)
	}
}

func (s *service) observeFailure(err error) {
	typed := pkgerrors.As(err)
	switch {
	case typed == nil:
		s.metrics.ObserveRejected(metrics.OrderOutcomeError)
	case typed.Code() == pkgerrors.CodeNotFound:
		s.metrics.ObserveRejected(metrics.OrderOutcomeProductNotFound)
	case typed.Code() == pkgerrors.CodeValidation:
		s.metrics.ObserveRejected(metrics.OrderOutcomeInsufficientStock)
	default:
		s.metrics.ObserveRejected(metrics.OrderOutcomeError)
	}
}

// mergeLines sums quantities per product in request order. Identifiers that
// are not UUIDs stay as their own lines and fail lookup later, so errors are
// reported for the first bad item as requested.
func mergeLines(items []OrderItemInput) ([]line, error) {
	lines := make([]line, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, quantityError("Quantity must be at least 1")
		}
		if item.Quantity > MaxQuantity {
			return nil, quantityError(quantityTooLarge)
		}
		raw := strings.TrimSpace(item.ProductID)
		id, err := uuid.Parse(raw)
		if err != nil {
			lines = append(lines, line{rawID: item.ProductID, quantity: item.Quantity})
			continue
		}
		if i, ok := index[id]; ok {
			if lines[i].quantity > MaxQuantity-item.Quantity {
				return nil, quantityError(quantityTooLarge)
			}
			lines[i].quantity += item.Quantity
			continue
		}
		index[id] = len(lines)
		lines = append(lines, line{rawID: raw, id: id, valid: true, quantity: item.Quantity})
	}
	return lines, nil
}

// lockOrder returns the valid lines sorted by id so concurrent orders lock
// product rows in the same order.
func lockOrder(lines []line) []line {
	sorted := make([]line, 0, len(lines))
	for _, l := range lines {
		if l.valid {
			sorted = append(sorted, l)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].id.String() < sorted[j].id.String()
	})
	return sorted
}

var quantityTooLarge = fmt.Sprintf("Quantity cannot exceed %d", MaxQuantity)

func quantityError(msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails([]string{msg})
}

func productNotFound(id string) error {
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "Product with ID %s not found", id)
}

func insufficientStock(name string) error {
	msg := fmt.Sprintf("Insufficient stock for %s", name)
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails([]string{msg})
}
