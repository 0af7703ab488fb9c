package product

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ListQuery describes the supported filter knobs for the browse endpoint.
// All filters are combined with AND.
type ListQuery struct {
	Search      string
	Category    string
	Categories  []string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	StockStatus enums.StockStatus
	SortBy      enums.ProductSortField
	SortOrder   enums.SortOrder
	Pagination  pagination.Params
}

// ListResult is one page of products plus its page metadata.
type ListResult struct {
	Items []ProductSummary `json:"items"`
	Page  pagination.Page  `json:"page"`
}

// Normalize trims inputs and applies the default sort and paging.
func (q ListQuery) Normalize() ListQuery {
	out := q
	out.Search = strings.TrimSpace(q.Search)
	out.Category = strings.TrimSpace(q.Category)
	out.Categories = nil
	for _, c := range q.Categories {
		if c = strings.TrimSpace(c); c != "" {
			out.Categories = append(out.Categories, c)
		}
	}
	if out.SortBy == "" {
		out.SortBy = enums.ProductSortName
	}
	if out.SortOrder == "" {
		out.SortOrder = enums.SortAsc
	}
	out.Pagination = q.Pagination.Normalize()
	return out
}

// categorySet merges category and categories into one match set.
func (q ListQuery) categorySet() []string {
	seen := map[string]struct{}{}
	var set []string
	add := func(c string) {
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		set = append(set, c)
	}
	add(q.Category)
	for _, c := range q.Categories {
		add(c)
	}
	sort.Strings(set)
	return set
}

// Fingerprint is a stable digest of the normalized query, used as a cache key.
func (q ListQuery) Fingerprint() string {
	n := q.Normalize()
	values := url.Values{}
	values.Set("search", strings.ToLower(n.Search))
	values.Set("categories", strings.Join(n.categorySet(), ","))
	if n.MinPrice != nil {
		values.Set("min", n.MinPrice.String())
	}
	if n.MaxPrice != nil {
		values.Set("max", n.MaxPrice.String())
	}
	values.Set("stock", string(n.StockStatus))
	values.Set("sort", string(n.SortBy)+":"+string(n.SortOrder))
	values.Set("page", strconv.Itoa(n.Pagination.Page))
	values.Set("limit", strconv.Itoa(n.Pagination.Limit))

	sum := sha256.Sum256([]byte(values.Encode()))
	return hex.EncodeToString(sum[:16])
}
