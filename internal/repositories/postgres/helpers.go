package postgres

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const defaultPageSize = 50

func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = defaultPageSize
	}
	return query.Limit(limit).Offset(offset)
}

// applySort normalizes the sort direction and rejects anything but a plain
// column identifier, falling back to the default column.
func applySort(query *gorm.DB, sortBy, sortOrder, defaultColumn string) *gorm.DB {
	column := defaultColumn
	if isColumnName(sortBy) {
		column = sortBy
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	return query.Order(fmt.Sprintf("%s %s", column, direction))
}

func isColumnName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}
