package storefront

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/stockwatch/internal/core/domain"
)

// parseCatalogPage reads every product card on a listing grid.
// Cards without a title link are skipped. Every listing carries status.
func parseCatalogPage(doc *goquery.Document, base string, status domain.StockStatus, sel domain.Selectors) []domain.ObservedListing {
	var listings []domain.ObservedListing

	doc.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		link := card.Find(sel.TitleLink).First()
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		listings = append(listings, domain.ObservedListing{
			URL:    domain.ResolveURL(base, href),
			Name:   cleanText(link.Text()),
			Image:  imageURL(card.Find(sel.Image).First()),
			Price:  domain.ParsePrice(card.Find(sel.Price).First().Text()),
			Status: status,
		})
	})

	return listings
}

// parseProductPage reads one product page.
// Without a cart button the status is Unknown.
func parseProductPage(doc *goquery.Document, pageURL string, sel domain.Selectors) domain.ObservedListing {
	obs := domain.ObservedListing{
		URL:    pageURL,
		Status: domain.StatusUnknown,
		Name:   cleanText(doc.Find(sel.PageTitle).First().Text()),
	}

	if cart := doc.Find(sel.CartButton).First(); cart.Length() > 0 {
		obs.Status = domain.StatusInStock
		soldOut := strings.ToLower(strings.TrimSpace(sel.SoldOutText))
		if soldOut != "" && strings.Contains(strings.ToLower(cart.Text()), soldOut) {
			obs.Status = domain.StatusOutOfStock
		}
	}

	price := doc.Find(sel.PagePrice).First()
	if price.Length() == 0 && sel.PagePriceFallback != "" {
		price = doc.Find(sel.PagePriceFallback).First()
	}
	obs.Price = domain.ParsePrice(price.Text())

	return obs
}

// imageURL prefers src and falls back to lazy-load attributes.
func imageURL(img *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src"} {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return domain.NormalizeImageURL(v)
		}
	}
	if srcset, ok := img.Attr("srcset"); ok {
		if first := strings.Fields(srcset); len(first) > 0 {
			return domain.NormalizeImageURL(first[0])
		}
	}
	return ""
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
