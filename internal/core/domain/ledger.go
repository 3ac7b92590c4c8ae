package domain

import "fmt"

// Normalizer derives a ledger key from a raw URL.
type Normalizer func(rawURL string) string

// Ledger is the in-memory view of the tracked products for one pass.
// It owns the ordered product list and the index from normalised key to
// position. Callers never see the backing slice.
type Ledger struct {
	normalize Normalizer
	products  []Product
	index     map[string]int
}

// NewLedger builds a ledger from products in their stored order.
// Products whose URLs normalise to the same key return ErrDuplicateProduct.
// A nil normalizer uses NormalizeURL.
func NewLedger(products []Product, normalize Normalizer) (*Ledger, error) {
	if normalize == nil {
		normalize = NormalizeURL
	}
	l := &Ledger{
		normalize: normalize,
		products:  make([]Product, 0, len(products)),
		index:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		if err := l.Add(p); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Key returns the normalised key for rawURL.
func (l *Ledger) Key(rawURL string) string {
	return l.normalize(rawURL)
}

// Len returns the number of tracked products.
func (l *Ledger) Len() int {
	return len(l.products)
}

// Contains reports whether a product is tracked under key.
func (l *Ledger) Contains(key string) bool {
	_, ok := l.index[key]
	return ok
}

// Get returns a copy of the product stored under key.
func (l *Ledger) Get(key string) (Product, bool) {
	i, ok := l.index[key]
	if !ok {
		return Product{}, false
	}
	return l.products[i].Clone(), true
}

// Lookup normalises rawURL and returns the matching product.
func (l *Ledger) Lookup(rawURL string) (Product, bool) {
	return l.Get(l.Key(rawURL))
}

// Add appends a new product. It fails with ErrDuplicateProduct when the
// key is already tracked and ErrInvalidInput when the URL is empty.
func (l *Ledger) Add(p Product) error {
	key := l.normalize(p.URL)
	if key == "" {
		return fmt.Errorf("%w: product without url", ErrInvalidInput)
	}
	if _, ok := l.index[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProduct, key)
	}
	if err := p.History.Validate(); err != nil {
		return fmt.Errorf("product %s: %w", key, err)
	}
	l.index[key] = len(l.products)
	l.products = append(l.products, p.Clone())
	return nil
}

// Update replaces the product stored under key.
func (l *Ledger) Update(key string, p Product) error {
	i, ok := l.index[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if l.normalize(p.URL) != key {
		return fmt.Errorf("%w: url %s does not match key %s", ErrInvalidInput, p.URL, key)
	}
	l.products[i] = p.Clone()
	return nil
}

// Keys returns the normalised keys in ledger order.
func (l *Ledger) Keys() []string {
	keys := make([]string, len(l.products))
	for i := range l.products {
		keys[i] = l.normalize(l.products[i].URL)
	}
	return keys
}

// Products returns a deep copy of the products in ledger order.
func (l *Ledger) Products() []Product {
	out := make([]Product, len(l.products))
	for i := range l.products {
		out[i] = l.products[i].Clone()
	}
	return out
}
