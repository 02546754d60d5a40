package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/agentstation/catalogmirror/pkg/batch"
	"github.com/agentstation/catalogmirror/pkg/catalog"
	"github.com/agentstation/catalogmirror/pkg/errors"
)

var _ batch.Writer = (*Store)(nil)

// updatableColumns guards the identifiers interpolated into CASE expressions.
var updatableColumns = map[string]bool{
	catalog.ColumnName:         true,
	catalog.ColumnColors:       true,
	catalog.ColumnPrice:        true,
	catalog.ColumnManufacturer: true,
	catalog.ColumnCategory:     true,
	catalog.ColumnAvailable:    true,
}

// ProductsByCategory lists the mirror for one category ordered by name.
func (s *Store) ProductsByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	var products []catalog.Product
	err := s.session(ctx).
		Where("category = ?", category).
		Order("name").
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, errors.WrapStore("list products", err)
	}
	return products, nil
}

// Product fetches a single row by id.
func (s *Store) Product(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	err := s.session(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewNotFoundError("product", id)
	}
	if err != nil {
		return nil, errors.WrapStore("get product", err)
	}
	return &p, nil
}

// IDsByCategory returns the mirrored ids of one category.
func (s *Store) IDsByCategory(ctx context.Context, category string) ([]string, error) {
	var ids []string
	err := s.session(ctx).Model(&catalog.Product{}).
		Where("category = ?", category).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errors.WrapStore("list ids", err)
	}
	return ids, nil
}

// AllIDs returns every mirrored id.
func (s *Store) AllIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.session(ctx).Model(&catalog.Product{}).Pluck("id", &ids).Error; err != nil {
		return nil, errors.WrapStore("list ids", err)
	}
	return ids, nil
}

// ExistingIDs returns the subset of ids already mirrored, in any category.
func (s *Store) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []string
	err := s.session(ctx).Model(&catalog.Product{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, errors.WrapStore("lookup ids", err)
	}
	return found, nil
}

// Manufacturers returns the distinct manufacturers currently mirrored.
func (s *Store) Manufacturers(ctx context.Context) ([]string, error) {
	var names []string
	err := s.session(ctx).Model(&catalog.Product{}).
		Distinct("manufacturer").
		Order("manufacturer").
		Pluck("manufacturer", &names).Error
	if err != nil {
		return nil, errors.WrapStore("list manufacturers", err)
	}
	return names, nil
}

// Count returns the number of mirrored products.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.session(ctx).Model(&catalog.Product{}).Count(&n).Error; err != nil {
		return 0, errors.WrapStore("count", err)
	}
	return n, nil
}

// UpdateColumns rewrites the given columns for ids in one statement:
//
//	UPDATE products SET col = CASE id WHEN ? THEN ? ... ELSE col END, ... WHERE id IN (...)
func (s *Store) UpdateColumns(ctx context.Context, ids []string, columns batch.Columns) (int64, error) {
	if len(ids) == 0 || len(columns) == 0 {
		return 0, nil
	}

	updates := make(map[string]any, len(columns))
	for column, values := range columns {
		if !updatableColumns[column] {
			return 0, errors.NewValidationError("column", column, "not updatable")
		}
		var sql strings.Builder
		args := make([]any, 0, 2*len(ids))
		sql.WriteString("CASE id")
		for _, id := range ids {
			v, ok := values[id]
			if !ok {
				continue
			}
			sql.WriteString(" WHEN ? THEN ?")
			args = append(args, id, v)
		}
		if len(args) == 0 {
			continue
		}
		fmt.Fprintf(&sql, " ELSE %s END", column)
		updates[column] = gorm.Expr(sql.String(), args...)
	}
	if len(updates) == 0 {
		return 0, nil
	}

	res := s.session(ctx).Model(&catalog.Product{}).
		Where("id IN ?", ids).
		Updates(updates)
	if res.Error != nil {
		return 0, errors.WrapStore("update", res.Error)
	}
	return res.RowsAffected, nil
}

// Insert persists new rows.
func (s *Store) Insert(ctx context.Context, products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	return errors.WrapStore("insert", s.session(ctx).Create(&products).Error)
}

// Delete removes rows by id.
func (s *Store) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.session(ctx).Where("id IN ?", ids).Delete(&catalog.Product{})
	if res.Error != nil {
		return 0, errors.WrapStore("delete", res.Error)
	}
	return res.RowsAffected, nil
}
