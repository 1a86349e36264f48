// Package marketplace derives Amazon deep links for books.
package marketplace

import (
	"net/url"
	"strings"

	"bookshelf/internal/isbn"
)

const baseURL = "https://www.amazon.com"

// BuildLink derives a marketplace link for a book. A normalizable ISBN yields
// a canonical product page keyed by the derived ISBN-10; otherwise the raw
// ISBN or the title becomes a search query. With neither, the bare storefront
// URL is returned. BuildLink never fails.
func BuildLink(rawISBN, title string) string {
	if v := strings.TrimSpace(rawISBN); v != "" {
		if isbn10, err := isbn.Normalize(v); err == nil {
			return baseURL + "/dp/" + isbn10
		}
		return searchURL(v)
	}
	if v := strings.TrimSpace(title); v != "" {
		return searchURL(v)
	}
	return baseURL
}

func searchURL(query string) string {
	return baseURL + "/s?k=" + url.QueryEscape(query)
}
