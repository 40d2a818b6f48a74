package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/board-collab-api/internal/utils"
)

// Paginate limits a query to one page. order is applied first so pages stay
// stable; pass "" when the caller has already ordered the query.
func Paginate(params utils.PaginationParams, order string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if order != "" {
			db = db.Order(order)
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}
