package trackerstore

import (
	"context"

	"gorm.io/gorm"
)

// getByField retrieves a single record of type T by matching field=value,
// converting gorm.ErrRecordNotFound to notFoundErr.
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// listByField retrieves every record of type T matching field=value.
// Returns an empty slice (not nil) on success with no rows.
func listByField[T any](db *gorm.DB, ctx context.Context, field string, value any) ([]*T, error) {
	var results []*T
	if err := db.WithContext(ctx).Where(field+" = ?", value).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// countByField returns the number of rows of type T matching field=value.
func countByField[T any](db *gorm.DB, ctx context.Context, field string, value any) (int64, error) {
	var count int64
	var zero T
	if err := db.WithContext(ctx).Model(&zero).Where(field+" = ?", value).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// existsByFields reports whether any row of type T matches every field/value
// pair given.
func existsByFields[T any](db *gorm.DB, ctx context.Context, fields map[string]any) (bool, error) {
	var count int64
	var zero T
	q := db.WithContext(ctx).Model(&zero)
	for field, value := range fields {
		q = q.Where(field+" = ?", value)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// deleteByFields deletes rows of type T matching every field/value pair.
// Returns notFoundErr if no rows were affected.
func deleteByFields[T any](db *gorm.DB, ctx context.Context, fields map[string]any, notFoundErr error) error {
	var zero T
	q := db.WithContext(ctx)
	for field, value := range fields {
		q = q.Where(field+" = ?", value)
	}
	result := q.Delete(&zero)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr
	}
	return nil
}
