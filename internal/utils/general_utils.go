package utils

import "gorm.io/gorm"

// Paginate is a gorm scope applying page/size offsets. Page numbering is
// 1-based; out-of-range values are clamped to sane defaults.
func Paginate(page, size int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 {
			page = 1
		}
		switch {
		case size > 100:
			size = 100
		case size <= 0:
			size = 10
		}
		offset := (page - 1) * size
		return db.Offset(offset).Limit(size)
	}
}
