package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		page       string
		limit      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{name: "Defaults", wantPage: 1, wantLimit: 10, wantOffset: 0},
		{name: "Explicit", page: "3", limit: "5", wantPage: 3, wantLimit: 5, wantOffset: 10},
		{name: "Invalid values", page: "-1", limit: "abc", wantPage: 1, wantLimit: 10, wantOffset: 0},
		{name: "Limit capped", page: "1", limit: "1000", wantPage: 1, wantLimit: MaxLimit, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePagination(tt.page, tt.limit, DefaultLimit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset())
		})
	}
}

func TestPagination_Meta(t *testing.T) {
	meta := Pagination{Page: 2, Limit: 10}.Meta(25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(25), meta.Total)

	assert.Equal(t, 0, Pagination{Page: 1, Limit: 10}.Meta(0).TotalPages)
}
