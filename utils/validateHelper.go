package utils

import (
	"context"
	"reflect"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
)

// check if id exists, using ctx's user_id in WHERE, return RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, userId int, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, userId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, userId int, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, userId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, userId, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return InvalidInputError("duplicate " + column)
	}
	return nil
}

// count records, using WHERE user_id = ? AND $condition
// user_id can be zero for admin user
func ResourceCountWhere[T any](ctx context.Context, userId int, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	if userId > 0 {
		dbCtx = dbCtx.Where("user_id = ?", userId)
	}
	dbCtx = dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
