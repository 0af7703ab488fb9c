package enums

import (
	"fmt"
	"strings"
)

// ProductSortField is a sortable catalog column exposed to clients.
type ProductSortField string

const (
	ProductSortName      ProductSortField = "name"
	ProductSortPrice     ProductSortField = "price"
	ProductSortStock     ProductSortField = "stock"
	ProductSortCreatedAt ProductSortField = "createdAt"
)

var productSortFields = []ProductSortField{
	ProductSortName,
	ProductSortPrice,
	ProductSortStock,
	ProductSortCreatedAt,
}

var productSortColumns = map[ProductSortField]string{
	ProductSortName:      "name",
	ProductSortPrice:     "price",
	ProductSortStock:     "stock",
	ProductSortCreatedAt: "created_at",
}

// Column returns the database column backing the sort field.
func (f ProductSortField) Column() string {
	if col, ok := productSortColumns[f]; ok {
		return col
	}
	return productSortColumns[ProductSortName]
}

// ProductSortFieldNames lists the accepted sort fields in display order.
func ProductSortFieldNames() []string {
	return names(productSortFields)
}

// ParseProductSortField matches value case-insensitively and returns the
// canonical field.
func ParseProductSortField(value string) (ProductSortField, error) {
	if f, ok := match(productSortFields, value); ok {
		return f, nil
	}
	return "", fmt.Errorf("invalid sort field %q", value)
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

var sortOrders = []SortOrder{SortAsc, SortDesc}

func SortOrderNames() []string {
	return names(sortOrders)
}

func ParseSortOrder(value string) (SortOrder, error) {
	if o, ok := match(sortOrders, value); ok {
		return o, nil
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func match[T ~string](values []T, raw string) (T, bool) {
	raw = strings.TrimSpace(raw)
	for _, v := range values {
		if strings.EqualFold(string(v), raw) {
			return v, true
		}
	}
	var zero T
	return zero, false
}
