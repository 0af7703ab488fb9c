package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/events"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type recordingPublisher struct {
	published []events.Envelope
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, env events.Envelope) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, env)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

type fixture struct {
	client    *db.Client
	svc       Service
	publisher *recordingPublisher
	cache     *countingInvalidator
	metrics   *metrics.OrderMetrics
	registry  *prometheus.Registry
	customer  *models.User
	admin     *models.User
	clock     *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	registry := prometheus.NewRegistry()
	f := &fixture{
		client:    client,
		publisher: &recordingPublisher{},
		cache:     &countingInvalidator{},
		metrics:   metrics.NewOrderMetrics(registry),
		registry:  registry,
		customer:  dbtest.CreateUser(t, client, "customer", enums.RoleCustomer),
		admin:     dbtest.CreateUser(t, client, "admin", enums.RoleAdmin),
		clock:     &now,
	}
	svc, err := NewService(ServiceParams{
		DB:        client,
		Orders:    NewRepository(client.DB()),
		Products:  product.NewRepository(client.DB()),
		Publisher: f.publisher,
		Cache:     f.cache,
		Metrics:   f.metrics,
		Clock: func() time.Time {
			*f.clock = f.clock.Add(time.Second)
			return *f.clock
		},
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.client.DB().First(&p, "id = ?", id).Error)
	return p.Stock
}

func (f *fixture) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.client.DB().Model(model).Count(&n).Error)
	return n
}

func strPtr(s string) *string { return &s }

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestPlaceOrderSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mouse := dbtest.CreateProduct(t, f.client, f.admin.ID, "Mouse", "29.99", 10, strPtr("Electronics"))
	pad := dbtest.CreateProduct(t, f.client, f.admin.ID, "Mouse Pad", "0.10", 5, nil)

	order, err := f.svc.PlaceOrder(ctx, f.customer.ID, PlaceOrderInput{Items: []OrderItemInput{
		{ProductID: mouse.ID.String(), Quantity: 2},
		{ProductID: pad.ID.String(), Quantity: 3},
	}})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, f.customer.ID, order.UserID)
	assert.True(t, decimal.RequireFromString("60.28").Equal(order.TotalPrice), "total %s", order.TotalPrice)
	require.Len(t, order.OrderItems, 2)

	byProduct := map[uuid.UUID]OrderItemResponse{}
	for _, item := range order.OrderItems {
		byProduct[item.ProductID] = item
	}
	require.NotNil(t, byProduct[mouse.ID].Product)
	assert.Equal(t, "Mouse", byProduct[mouse.ID].Product.Name)
	assert.Equal(t, "Electronics", *byProduct[mouse.ID].Product.Category)
	assert.Equal(t, 2, byProduct[mouse.ID].Quantity)
	assert.True(t, decimal.RequireFromString("0.10").Equal(byProduct[pad.ID].UnitPrice))

	assert.Equal(t, 8, f.stockOf(t, mouse.ID))
	assert.Equal(t, 2, f.stockOf(t, pad.ID))

	assert.Equal(t, 1, f.cache.calls)
	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, events.TypeOrderPlaced, f.publisher.published[0].Type)
	assert.Equal(t, order.ID.String(), f.publisher.published[0].Key)
	assert.Equal(t, float64(1), f.attempts(t, metrics.OrderOutcomePlaced))
}

func (f *fixture) attempts(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "storefront_order_attempts_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestPlaceOrderMergesDuplicateLines(t *testing.T) {
	f := newFixture(t)
	p := dbtest.CreateProduct(t, f.client, f.admin.ID, "Pen", "1.50", 3, nil)

	_, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, PlaceOrderInput{Items: []OrderItemInput{
		{ProductID: p.ID.String(), Quantity: 2},
		{ProductID: p.ID.String(), Quantity: 2},
	}})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "Insufficient stock for Pen", typed.Message())
	assert.Equal(t, 3, f.stockOf(t, p.ID))
}

func TestPlaceOrderExactStockSucceeds(t *testing.T) {
	f := newFixture(t)
	p := dbtest.CreateProduct(t, f.client, f.admin.ID, "Notebook", "4.00", 3, nil)

	order, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, PlaceOrderInput{Items: []OrderItemInput{
		{ProductID: p.ID.String(), Quantity: 1},
		{ProductID: p.ID.String(), Quantity: 2},
	}})
	require.NoError(t, err)
	assert.Len(t, order.OrderItems, 2)
	assert.True(t, decimal.NewFromInt(12).Equal(order.TotalPrice))
	assert.Equal(t, 0, f.stockOf(t, p.ID))
}

func TestPlaceOrderMissingProductRollsBack(t *testing.T) {
	f := newFixture(t)
	p := dbtest.CreateProduct(t, f.client, f.admin.ID, "Cup", "3.00", 10, nil)
	missing := uuid.New()

	_, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, PlaceOrderInput{Items: []OrderItemInput{
		{ProductID: p.ID.String(), Quantity: 1},
		{ProductID: missing.String(), Quantity: 1},
	}})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Equal(t, "Product with ID "+missing.String()+" not found", typed.Message())

	assert.Equal(t, 10, f.stockOf(t, p.ID))
	assert.Equal(t, int64(0), f.countRows(t, &models.Order{}))
	assert.Equal(t, int64(0), f.countRows(t, &models.OrderItem{}))
	assert.Empty(t, f.publisher.published)
	assert.Equal(t, 0, f.cache.calls)
}

func TestPlaceOrderMalformedProductID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, PlaceOrderInput{Items: []OrderItemInput{
		{ProductID: "abc", Quantity: 1},
	}})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Equal(t, "Product with ID abc not found", typed.Message())
}

func TestPlaceOrderInsufficientStockLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	plenty := dbtest.CreateProduct(t, f.client, f.admin.ID, "Plenty", "1.00", 100, nil)
	scarce := dbtest.CreateProduct(t, f.client, f.admin.ID, "Scarce", "1.00", 1, nil)

	_, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, PlaceOrderInput{Items: []OrderItemInput{
		{ProductID: plenty.ID.String(), Quantity: 5},
		{ProductID: scarce.ID.String(), Quantity: 2},
	}})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Insufficient stock for Scarce", typed.Message())
	assert.Equal(t, []string{"Insufficient stock for Scarce"}, typed.Details())

	assert.Equal(t, 100, f.stockOf(t, plenty.ID))
	assert.Equal(t, 1, f.stockOf(t, scarce.ID))
	assert.Equal(t, int64(0), f.countRows(t, &models.Order{}))
	assert.Equal(t, float64(1), f.attempts(t, metrics.OrderOutcomeInsufficientStock))
}

func TestPlaceOrderEmptyItems(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, PlaceOrderInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPlaceOrderPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")
	p := dbtest.CreateProduct(t, f.client, f.admin.ID, "Stapler", "7.00", 2, nil)

	order, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, PlaceOrderInput{Items: []OrderItemInput{
		{ProductID: p.ID.String(), Quantity: 1},
	}})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, 1, f.stockOf(t, p.ID))
}

func TestFindUserOrdersNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := dbtest.CreateProduct(t, f.client, f.admin.ID, "Glue", "2.00", 10, nil)

	var placed []uuid.UUID
	for i := 0; i < 3; i++ {
		order, err := f.svc.PlaceOrder(ctx, f.customer.ID, PlaceOrderInput{Items: []OrderItemInput{
			{ProductID: p.ID.String(), Quantity: 1},
		}})
		require.NoError(t, err)
		placed = append(placed, order.ID)
	}
	_, err := f.svc.PlaceOrder(ctx, f.admin.ID, PlaceOrderInput{Items: []OrderItemInput{
		{ProductID: p.ID.String(), Quantity: 1},
	}})
	require.NoError(t, err)

	summaries, err := f.svc.FindUserOrders(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, placed[2], summaries[0].ID)
	assert.Equal(t, placed[1], summaries[1].ID)
	assert.Equal(t, placed[0], summaries[2].ID)
	assert.True(t, decimal.NewFromInt(2).Equal(summaries[0].TotalPrice))

	none, err := f.svc.FindUserOrders(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPlaceOrderRejectsQuantityOverflow(t *testing.T) {
	f := newFixture(t)
	p := dbtest.CreateProduct(t, f.client, f.admin.ID, "Bolt", "1.00", 5, nil)

	cases := map[string][]OrderItemInput{
		"merged lines wrap": {
			{ProductID: p.ID.String(), Quantity: 1 << 62},
			{ProductID: p.ID.String(), Quantity: 1 << 62},
		},
		"merged lines exceed column": {
			{ProductID: p.ID.String(), Quantity: MaxQuantity},
			{ProductID: p.ID.String(), Quantity: 1},
		},
		"single line too large": {
			{ProductID: p.ID.String(), Quantity: MaxQuantity + 1},
		},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, PlaceOrderInput{Items: items})
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Equal(t, []string{"Quantity cannot exceed 2147483647"}, typed.Details())
		})
	}

	assert.Equal(t, 5, f.stockOf(t, p.ID))
	assert.Equal(t, int64(0), f.countRows(t, &models.Order{}))
	assert.Equal(t, float64(3), f.attempts(t, metrics.OrderOutcomeInvalid))
}

func TestPlaceOrderReportsFirstBadItemInRequestOrder(t *testing.T) {
	f := newFixture(t)
	scarce := dbtest.CreateProduct(t, f.client, f.admin.ID, "Scarce", "1.00", 1, nil)
	// sorts ahead of any random product id, so it is locked first
	missing := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	_, err := f.svc.PlaceOrder(context.Background(), f.customer.ID, PlaceOrderInput{Items: []OrderItemInput{
		{ProductID: scarce.ID.String(), Quantity: 2},
		{ProductID: missing.String(), Quantity: 1},
		{ProductID: "abc", Quantity: 1},
	}})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "Insufficient stock for Scarce", typed.Message())

	_, err = f.svc.PlaceOrder(context.Background(), f.customer.ID, PlaceOrderInput{Items: []OrderItemInput{
		{ProductID: "abc", Quantity: 1},
		{ProductID: missing.String(), Quantity: 1},
	}})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Product with ID abc not found", typed.Message())
	assert.Equal(t, 1, f.stockOf(t, scarce.ID))
}

func TestMergeLinesKeepsRequestOrder(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	lines, err := mergeLines([]OrderItemInput{
		{ProductID: b.String(), Quantity: 1},
		{ProductID: "bogus", Quantity: 3},
		{ProductID: a.String(), Quantity: 2},
		{ProductID: b.String(), Quantity: 4},
	})
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, b, lines[0].id)
	assert.Equal(t, 5, lines[0].quantity)
	assert.False(t, lines[1].valid)
	assert.Equal(t, "bogus", lines[1].rawID)
	assert.Equal(t, a, lines[2].id)

	locked := lockOrder(lines)
	require.Len(t, locked, 2)
	assert.Equal(t, a, locked[0].id)
	assert.Equal(t, b, locked[1].id)
}
