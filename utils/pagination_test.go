package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)

	page, size = NormalizePage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, size)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestSortHelpers(t *testing.T) {
	allowed := map[string]bool{"title": true}
	assert.Equal(t, "title", SortColumn("title", allowed, "created_at"))
	assert.Equal(t, "created_at", SortColumn("password; drop", allowed, "created_at"))
	assert.Equal(t, "asc", SortOrder("asc"))
	assert.Equal(t, "desc", SortOrder("sideways"))
}

func TestPointerHelpers(t *testing.T) {
	a := Ptr("x")
	assert.Equal(t, "x", StringValue(a))
	assert.Equal(t, "", StringValue(nil))
	assert.True(t, SameStringPtr(nil, nil))
	assert.True(t, SameStringPtr(a, Ptr("x")))
	assert.False(t, SameStringPtr(a, nil))
	assert.False(t, SameStringPtr(a, Ptr("y")))
}
