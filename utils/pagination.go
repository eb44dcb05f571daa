package utils

import "gorm.io/gorm"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizePage clamps page and page size into their valid ranges
func NormalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Paginate is a gorm scope applying limit and offset for the given page
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	page, pageSize = NormalizePage(page, pageSize)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// TotalPages calculates how many pages totalCount rows span
func TotalPages(totalCount int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}
	return totalPages
}

// SortColumn returns sortBy when whitelisted, otherwise fallback
func SortColumn(sortBy string, allowed map[string]bool, fallback string) string {
	if allowed[sortBy] {
		return sortBy
	}
	return fallback
}

// SortOrder normalises the order to asc or desc
func SortOrder(order string) string {
	if order != "asc" && order != "desc" {
		return "desc"
	}
	return order
}
