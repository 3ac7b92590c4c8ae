package domain

// StatusFilter restricts a catalog listing by stock status.
type StatusFilter string

// Status filters.
const (
	FilterAll        StatusFilter = "all"
	FilterInStock    StatusFilter = "in-stock"
	FilterOutOfStock StatusFilter = "out-of-stock"
)

// IsValid returns true if the filter is recognised.
func (f StatusFilter) IsValid() bool {
	switch f {
	case FilterAll, FilterInStock, FilterOutOfStock, "":
		return true
	default:
		return false
	}
}

// Matches reports whether status passes the filter.
func (f StatusFilter) Matches(status StockStatus) bool {
	switch f {
	case FilterInStock:
		return status == StatusInStock
	case FilterOutOfStock:
		return status == StatusOutOfStock
	default:
		return true
	}
}

// SortOrder orders a catalog listing.
type SortOrder string

// Sort orders.
const (
	SortLedger    SortOrder = ""
	SortName      SortOrder = "name"
	SortPrice     SortOrder = "price"
	SortPriceDesc SortOrder = "price-desc"
	SortChange    SortOrder = "change"
)

// IsValid returns true if the order is recognised.
func (o SortOrder) IsValid() bool {
	switch o {
	case SortLedger, SortName, SortPrice, SortPriceDesc, SortChange:
		return true
	default:
		return false
	}
}

// CatalogFilter selects and orders products for presentation.
type CatalogFilter struct {
	Status StatusFilter

	// Search matches product names case-insensitively.
	Search string

	Sort SortOrder

	// Limit caps the result size. Zero means no limit.
	Limit int
}

// PriceChange returns the relative move of the last price from the target
// price set at discovery, -0.1 for 10% cheaper. Zero when either is unknown.
func (p *Product) PriceChange() float64 {
	if p.LastPrice <= 0 || p.TargetPrice <= 0 {
		return 0
	}
	return (p.LastPrice - p.TargetPrice) / p.TargetPrice
}
