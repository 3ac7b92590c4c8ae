package domain

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// volatileParams are query parameters that never identify a product.
var volatileParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"ref":     true,
	"_pos":    true,
	"_sid":    true,
	"_ss":     true,
	"_psq":    true,
	"_fid":    true,
	"variant": true,
	"page":    true,
	"sort_by": true,
}

// NormalizeURL derives the canonical ledger key for a listing URL.
// Protocol-relative URLs get https, scheme and host are lower-cased,
// default ports, fragments and volatile query parameters are dropped,
// remaining parameters are sorted and a trailing slash is trimmed.
// Text that does not parse as a URL is returned trimmed.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if port := u.Port(); (u.Scheme == "https" && port == "443") || (u.Scheme == "http" && port == "80") {
		u.Host = u.Hostname()
	}
	u.Fragment = ""
	u.RawFragment = ""

	if len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
		u.RawPath = ""
	}

	q := u.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		lk := strings.ToLower(k)
		if volatileParams[lk] || strings.HasPrefix(lk, "utm_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		vals := q[k]
		sort.Strings(vals)
		for _, v := range vals {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	u.RawQuery = b.String()
	u.ForceQuery = false

	return u.String()
}

// ResolveURL makes href absolute against base. Protocol-relative hrefs get
// https. If base is empty or invalid, href is returned unchanged.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if base == "" {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// NormalizeImageURL turns protocol-relative image URLs into https URLs.
func NormalizeImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return raw
}

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// ParsePrice extracts a price from display text such as "$1,299.00".
// It returns 0 when no usable price is present.
func ParsePrice(text string) float64 {
	clean := nonPriceChars.ReplaceAllString(text, "")
	if clean == "" {
		return 0
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || !isUsablePrice(v) {
		return 0
	}
	return v
}

func isUsablePrice(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
