package marketplace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLink(t *testing.T) {
	tests := []struct {
		name  string
		isbn  string
		title string
		want  string
	}{
		{
			name: "normalizable ISBN-13 yields product page",
			isbn: "9780141439518",
			want: "https://www.amazon.com/dp/0141439513",
		},
		{
			name: "ISBN-10 passes straight through",
			isbn: "0-9752298-0-X",
			want: "https://www.amazon.com/dp/097522980X",
		},
		{
			name:  "ISBN wins over title",
			isbn:  "9780141439518",
			title: "Pride and Prejudice",
			want:  "https://www.amazon.com/dp/0141439513",
		},
		{
			name: "underivable ISBN falls back to search on the raw value",
			isbn: "12345",
			want: "https://www.amazon.com/s?k=12345",
		},
		{
			name:  "title only yields search",
			title: "Dune",
			want:  "https://www.amazon.com/s?k=Dune",
		},
		{
			name:  "title with spaces is encoded",
			title: "The Left Hand of Darkness",
			want:  "https://www.amazon.com/s?k=The+Left+Hand+of+Darkness",
		},
		{
			name: "neither yields bare storefront",
			want: "https://www.amazon.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildLink(tt.isbn, tt.title))
		})
	}
}

func TestBuildLink_TitleNeverYieldsBareBase(t *testing.T) {
	got := BuildLink("", "Dune")
	assert.NotEqual(t, "https://www.amazon.com", got)
	assert.True(t, strings.Contains(got, "Dune"))
}
