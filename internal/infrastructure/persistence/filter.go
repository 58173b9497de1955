package persistence

import (
	"github.com/farmops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

var allowedOrderColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"display_name": true,
	"order_number": true,
	"order_date":   true,
	"joined_at":    true,
	"code":         true,
	"name":         true,
}

// applyFilter applies pagination and ordering to a query. The order
// column is checked against an allow-list; anything else falls back to
// created_at so a caller-supplied column name can never reach the SQL.
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if !allowedOrderColumns[orderBy] {
		orderBy = "created_at"
	}
	dir := "desc"
	if filter.OrderDir == "asc" {
		dir = "asc"
	}
	query = query.Order(orderBy + " " + dir)

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	return query
}

// countThenPage runs the count before pagination is applied and returns
// both pieces for building a Paginated result.
func countThenPage(query *gorm.DB, filter shared.Filter) (*gorm.DB, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return applyFilter(query, filter), total, nil
}
