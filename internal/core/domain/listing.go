package domain

// ObservedListing is one scrape of one product. It is produced by a
// listing source and consumed once by the reconciler.
type ObservedListing struct {
	// URL is the raw listing address, before normalisation.
	URL string

	// Price is the observed price. Zero, negative or non-finite values mean
	// the price is unknown.
	Price float64

	// Status is the observed stock status.
	Status StockStatus

	// Name optionally refreshes the product's display name.
	Name string

	// Image optionally refreshes the product's display image.
	Image string
}

// KnownPrice returns the price and true when the observation carries real
// price data.
func (o ObservedListing) KnownPrice() (float64, bool) {
	if !isUsablePrice(o.Price) {
		return 0, false
	}
	return o.Price, true
}

// QueryKind selects how a listing source reads a query.
type QueryKind string

// Query kinds.
const (
	// QueryCatalog is a paginated listing grid.
	QueryCatalog QueryKind = "catalog"

	// QueryProduct is a single product page.
	QueryProduct QueryKind = "product"
)

// CatalogQuery describes what a listing source should observe.
type CatalogQuery struct {
	// Name labels the query in logs.
	Name string

	// URL is the catalog or product page address.
	URL string

	// Kind selects catalog or product page parsing.
	Kind QueryKind

	// Pages is the number of catalog pages to read. Ignored for product pages.
	Pages int

	// DefaultStatus is assumed for catalog cards, which carry no stock marker.
	DefaultStatus StockStatus
}

// PageCount returns Pages, at least 1.
func (q CatalogQuery) PageCount() int {
	if q.Pages < 1 {
		return 1
	}
	return q.Pages
}

// Selectors are the CSS selectors a storefront adapter reads.
type Selectors struct {
	// Card matches one product card in a catalog grid.
	Card string

	// TitleLink matches the title anchor inside a card.
	TitleLink string

	// Price matches the current price inside a card.
	Price string

	// Image matches the card image.
	Image string

	// CartButton matches the add-to-cart button on a product page.
	CartButton string

	// SoldOutText marks the cart button as out of stock, matched case-insensitively.
	SoldOutText string

	// PagePrice matches the price on a product page.
	PagePrice string

	// PagePriceFallback is tried when PagePrice matches nothing.
	PagePriceFallback string

	// PageTitle matches the product name on a product page.
	PageTitle string
}

// DefaultSelectors returns selectors for the storefront markup the
// tracker was first written against.
func DefaultSelectors() Selectors {
	return Selectors{
		Card:              "product-card",
		TitleLink:         "a.product-card__title-link",
		Price:             "span.product__price--current",
		Image:             "img",
		CartButton:        "button#button-cart",
		SoldOutText:       "sold out",
		PagePrice:         "div.product-price",
		PagePriceFallback: "span.price",
		PageTitle:         "h1",
	}
}
