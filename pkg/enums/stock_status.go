package enums

import "fmt"

// LowStockThreshold is the inclusive upper bound for the low-stock bucket.
const LowStockThreshold = 10

// StockStatus buckets products by available stock.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in-stock"
	StockStatusOutOfStock StockStatus = "out-of-stock"
	StockStatusLowStock   StockStatus = "low-stock"
)

var validStockStatuses = []StockStatus{
	StockStatusInStock,
	StockStatusOutOfStock,
	StockStatusLowStock,
}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockStatus.
func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// StockStatusNames lists the accepted stock statuses in display order.
func StockStatusNames() []string {
	return names(validStockStatuses)
}

// ParseStockStatus matches value case-insensitively and returns the canonical status.
func ParseStockStatus(value string) (StockStatus, error) {
	if s, ok := match(validStockStatuses, value); ok {
		return s, nil
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}

// StockStatusFor classifies a stock level.
func StockStatusFor(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StockStatusOutOfStock
	case stock <= LowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}
