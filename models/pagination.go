package models

import "math"

type PageInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
}

// normalizePaging clamps page/limit and returns the SQL offset.
func normalizePaging(page int, limit int, defaultLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 500 {
		limit = 500
	}
	offset := (page - 1) * limit
	return page, limit, offset
}

func makePageInfo(page int, limit int, total int64) *PageInfo {
	return &PageInfo{
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		Total:       total,
	}
}
