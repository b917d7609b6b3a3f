package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/project-ledger-api/internal/domain"
	"github.com/straye-as/project-ledger-api/internal/scope"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds an ORDER BY clause from a whitelist of API field names.
// Unknown fields fall back to defaultColumn.
func BuildOrderClause(field string, order SortOrder, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[field]
	if !ok {
		column = defaultColumn
	}
	if order == SortOrderAsc {
		return column + " ASC"
	}
	return column + " DESC"
}

func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// memberProjectIDs selects the ids of projects the user is a member of
func memberProjectIDs(ctx context.Context, db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.WithContext(ctx).
		Model(&domain.ProjectMember{}).
		Select("project_members.project_id").
		Where("project_members.user_id = ?", userID)
}

// applyProjectFilter narrows a query on the projects table. Company isolation is
// always applied; an unrecognised visibility matches nothing.
func applyProjectFilter(ctx context.Context, db, query *gorm.DB, f scope.ProjectFilter) *gorm.DB {
	query = query.Where("projects.company_id = ?", f.CompanyID)

	switch f.Visibility {
	case scope.VisibilityCompany:
	case scope.VisibilityManagedOrMember:
		query = query.Where("(projects.project_manager_id = ? OR projects.id IN (?))",
			f.SubjectID, memberProjectIDs(ctx, db, f.SubjectID))
	case scope.VisibilityMember:
		query = query.Where("projects.id IN (?)", memberProjectIDs(ctx, db, f.SubjectID))
	case scope.VisibilityManaged:
		query = query.Where("projects.project_manager_id = ?", f.SubjectID)
	default:
		query = query.Where("1 = 0")
	}

	if f.ProjectID != nil {
		query = query.Where("projects.id = ?", *f.ProjectID)
	}
	if f.Status != nil {
		query = query.Where("projects.status = ?", *f.Status)
	}
	return query
}

// scopedProjectIDs selects the ids of projects visible under f
func scopedProjectIDs(ctx context.Context, db *gorm.DB, f scope.ProjectFilter) *gorm.DB {
	query := db.WithContext(ctx).Model(&domain.Project{}).Select("projects.id")
	return applyProjectFilter(ctx, db, query, f)
}

// scopedTaskIDs selects the ids of tasks whose project is visible under f
func scopedTaskIDs(ctx context.Context, db *gorm.DB, f scope.ProjectFilter) *gorm.DB {
	return db.WithContext(ctx).
		Model(&domain.Task{}).
		Select("tasks.id").
		Where("tasks.project_id IN (?)", scopedProjectIDs(ctx, db, f))
}

// companyUserIDs selects the ids of users belonging to a company
func companyUserIDs(ctx context.Context, db *gorm.DB, companyID uuid.UUID) *gorm.DB {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Select("users.id").
		Where("users.company_id = ?", companyID)
}

// sumDecimal runs a single-column SUM and scans it into a decimal.
// COALESCE keeps empty sets at zero.
func sumDecimal(query *gorm.DB, column string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := query.Select("COALESCE(SUM(" + column + "), 0) AS total").Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func toLowerLike(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
