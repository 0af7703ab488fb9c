package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const (
	LowStockJobName        = "inventory_low_stock_scan"
	defaultLowStockListCap = 50
)

type stockReader interface {
	CountByStockStatus(ctx context.Context) (low int64, out int64, err error)
	FindLowStock(ctx context.Context, limit int) ([]models.Product, error)
}

// LowStockJobParams configure the inventory scan.
type LowStockJobParams struct {
	Products stockReader
	Metrics  *metrics.InventoryMetrics
	Logger   *logger.Logger
	Interval time.Duration
	ListCap  int
}

// LowStockJob refreshes the inventory gauges and logs products running low.
type LowStockJob struct {
	products stockReader
	metrics  *metrics.InventoryMetrics
	logg     *logger.Logger
	interval time.Duration
	listCap  int
}

func NewLowStockJob(params LowStockJobParams) (*LowStockJob, error) {
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	listCap := params.ListCap
	if listCap <= 0 {
		listCap = defaultLowStockListCap
	}
	return &LowStockJob{
		products: params.Products,
		metrics:  params.Metrics,
		logg:     params.Logger,
		interval: params.Interval,
		listCap:  listCap,
	}, nil
}

func (j *LowStockJob) Name() string { return LowStockJobName }

func (j *LowStockJob) Interval() time.Duration { return j.interval }

func (j *LowStockJob) Run(ctx context.Context) error {
	low, out, err := j.products.CountByStockStatus(ctx)
	if err != nil {
		return fmt.Errorf("count stock buckets: %w", err)
	}
	j.metrics.SetStockCounts(low, out)

	summaryCtx := j.logg.WithFields(ctx, map[string]any{
		"low_stock":    low,
		"out_of_stock": out,
	})
	j.logg.Info(summaryCtx, "inventory scan complete")

	if low == 0 {
		return nil
	}
	products, err := j.products.FindLowStock(ctx, j.listCap)
	if err != nil {
		return fmt.Errorf("list low stock products: %w", err)
	}
	for _, p := range products {
		productCtx := j.logg.WithFields(ctx, map[string]any{
			"product_id": p.ID.String(),
			"name":       p.Name,
			"stock":      p.Stock,
		})
		j.logg.Warn(productCtx, "product stock is running low")
	}
	return nil
}
