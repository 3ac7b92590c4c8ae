package domain

import (
	"fmt"
	"sort"
	"time"
)

// StockStatus is the availability of a listing.
type StockStatus string

// Known stock states. The string values match the ledger file format.
const (
	StatusInStock    StockStatus = "In Stock"
	StatusOutOfStock StockStatus = "Out of Stock"
	StatusUnknown    StockStatus = "Unknown"
)

// ParseStockStatus maps ledger text to a StockStatus.
// Unrecognised text is Unknown.
func ParseStockStatus(s string) StockStatus {
	switch StockStatus(s) {
	case StatusInStock:
		return StatusInStock
	case StatusOutOfStock:
		return StatusOutOfStock
	default:
		return StatusUnknown
	}
}

// IsKnown reports whether the status is InStock or OutOfStock.
func (s StockStatus) IsKnown() bool {
	return s == StatusInStock || s == StatusOutOfStock
}

// String returns the string representation.
func (s StockStatus) String() string {
	return string(s)
}

// HistoryKeyLayout is the text form of a coarse history timestamp.
const HistoryKeyLayout = "2006-01-02 15:04"

// HistoryResolution is the granularity of history timestamps.
const HistoryResolution = time.Minute

// CoarseTime truncates t to the history resolution in UTC.
func CoarseTime(t time.Time) time.Time {
	return t.UTC().Truncate(HistoryResolution)
}

// PricePoint is one recorded price at a coarse timestamp.
type PricePoint struct {
	At    time.Time
	Price float64
}

// PriceHistory is an append-only series of price points with strictly
// increasing timestamps.
type PriceHistory []PricePoint

// Record writes price at the coarse form of at.
// A write at the newest timestamp replaces that entry. A write older than
// the newest entry returns ErrHistoryOrder and leaves the history unchanged.
func (h PriceHistory) Record(at time.Time, price float64) (PriceHistory, error) {
	key := CoarseTime(at)
	if n := len(h); n > 0 {
		last := h[n-1].At
		switch {
		case key.Equal(last):
			out := h.Clone()
			out[n-1].Price = price
			return out, nil
		case key.Before(last):
			return h, fmt.Errorf("%w: %s before %s", ErrHistoryOrder,
				key.Format(HistoryKeyLayout), last.Format(HistoryKeyLayout))
		}
	}
	return append(h.Clone(), PricePoint{At: key, Price: price}), nil
}

// Latest returns the newest point.
func (h PriceHistory) Latest() (PricePoint, bool) {
	if len(h) == 0 {
		return PricePoint{}, false
	}
	return h[len(h)-1], true
}

// Clone returns an independent copy.
func (h PriceHistory) Clone() PriceHistory {
	if h == nil {
		return nil
	}
	out := make(PriceHistory, len(h))
	copy(out, h)
	return out
}

// Validate checks that timestamps strictly increase.
func (h PriceHistory) Validate() error {
	for i := 1; i < len(h); i++ {
		if !h[i].At.After(h[i-1].At) {
			return fmt.Errorf("%w: entry %d at %s", ErrHistoryOrder, i, h[i].At.Format(HistoryKeyLayout))
		}
	}
	return nil
}

// NewPriceHistory builds a history from unordered points, sorting by time.
// Points sharing a coarse timestamp keep the last one given.
func NewPriceHistory(points []PricePoint) PriceHistory {
	if len(points) == 0 {
		return nil
	}
	byKey := make(map[time.Time]float64, len(points))
	for _, p := range points {
		byKey[CoarseTime(p.At)] = p.Price
	}
	out := make(PriceHistory, 0, len(byKey))
	for at, price := range byKey {
		out = append(out, PricePoint{At: at, Price: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Product is one tracked listing. Its identity is the normalised URL.
type Product struct {
	// URL is the listing address. The ledger keys products by its normalised form.
	URL string

	// Name is the display name. May be empty.
	Name string

	// Image is an optional absolute display URL.
	Image string

	// TargetPrice is the alert threshold, set at discovery time.
	TargetPrice float64

	// LastPrice is the most recently reconciled known price.
	LastPrice float64

	// LastStatus is the most recently reconciled stock status.
	LastStatus StockStatus

	// NotifyRestock enables restock alerts for this product.
	NotifyRestock bool

	// History holds prices recorded when price or status changed.
	History PriceHistory
}

// DisplayName returns the name, falling back to the URL.
func (p *Product) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.URL
}

// TargetMet reports whether price is known and at or below the target.
func (p *Product) TargetMet(price float64) bool {
	return price > 0 && p.TargetPrice > 0 && price <= p.TargetPrice
}

// Clone returns a deep copy.
func (p Product) Clone() Product {
	p.History = p.History.Clone()
	return p
}
