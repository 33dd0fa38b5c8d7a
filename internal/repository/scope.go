package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/hatzaot-app/quotes-api/internal/auth"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // The field to sort by (API field name)
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns a default sort configuration (updated_at DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "updatedAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the SQL ORDER BY clause from field mapping and sort config.
// fieldMap maps API field names to database column names.
// Returns the default sort if field is not in whitelist.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// ApplyOwnerFilter scopes a query to the authenticated account's rows.
// Admin and system callers see all rows.
func ApplyOwnerFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	ownerID := auth.GetEffectiveOwnerFilter(ctx)
	if ownerID != "" {
		return query.Where("owner_id = ?", ownerID)
	}
	return query
}

// ApplyOwnerFilterWithAlias applies the owner filter using a table alias.
// Use this when joining multiple tables and the owner_id column is ambiguous.
func ApplyOwnerFilterWithAlias(ctx context.Context, query *gorm.DB, tableAlias string) *gorm.DB {
	ownerID := auth.GetEffectiveOwnerFilter(ctx)
	if ownerID != "" {
		return query.Where(tableAlias+".owner_id = ?", ownerID)
	}
	return query
}

// MustHaveOwnerAccess checks if the caller may touch a row owned by recordOwnerID
func MustHaveOwnerAccess(ctx context.Context, recordOwnerID string) bool {
	ownerID := auth.GetEffectiveOwnerFilter(ctx)
	if ownerID == "" {
		return true
	}
	return ownerID == recordOwnerID
}
