package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/tracker-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OwnedBy scopes a query to rows owned by userID.
func OwnedBy(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// NullableEq matches column against value, using IS NULL when value is nil.
func NullableEq(column string, value *uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == nil {
			return db.Where(column + " IS NULL")
		}
		return db.Where(column+" = ?", *value)
	}
}

// DisplayOrdered sorts by display_order with nulls last, then by id.
func DisplayOrdered(db *gorm.DB) *gorm.DB {
	return db.Order("CASE WHEN display_order IS NULL THEN 1 ELSE 0 END").
		Order("display_order ASC").
		Order("id ASC")
}
