package utils

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN_MINUTES"))
	if err != nil {
		lifespan = 60
	}
	return time.Duration(lifespan) * time.Minute
}

// name of the struct type, for redis keys
func GetTypeName[T any]() string {
	var model T
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func listCacheKey[T any](userId int) string {
	return fmt.Sprintf("%s:%d:list", GetTypeName[T](), userId)
}

func itemCacheKey[T any](userId int, id int) string {
	return fmt.Sprintf("%s:%d:%d", GetTypeName[T](), userId, id)
}

func StoreListToRedis[T any](userId int, list []*T) error {
	return config.SetRedisObject(listCacheKey[T](userId), list, GetCacheLifespan())
}

func RetrieveListFromRedis[T any](userId int) ([]*T, bool) {
	var list []*T
	found, err := config.GetRedisObject(listCacheKey[T](userId), &list)
	if err != nil || !found {
		return nil, false
	}
	return list, true
}

func RemoveRedisList[T any](userId int) error {
	return config.RemoveRedisKey(listCacheKey[T](userId))
}

func StoreItemToRedis[T any](userId int, id int, item *T) error {
	return config.SetRedisObject(itemCacheKey[T](userId, id), item, GetCacheLifespan())
}

func RetrieveItemFromRedis[T any](userId int, id int) (*T, bool) {
	var item T
	found, err := config.GetRedisObject(itemCacheKey[T](userId, id), &item)
	if err != nil || !found {
		return nil, false
	}
	return &item, true
}

func RemoveRedisItem[T any](userId int, id int) error {
	return config.RemoveRedisKey(itemCacheKey[T](userId, id))
}

var sequenceMutex sync.Mutex

// GetSequence returns the next value of the tenant's monotonic counter for T.
//
// The counter lives in Redis (INCR). When Redis has no entry yet (fresh tenant,
// flushed cache) it is seeded from MAX(sequence_no) of the tenant's rows, so a
// restart never reissues a number. The uniqueness re-check loop guards against
// a stale counter after a manual Redis wipe while rows still exist.
func GetSequence[T any](ctx context.Context, userId int) (int64, error) {
	sequenceMutex.Lock()
	defer sequenceMutex.Unlock()

	key := fmt.Sprintf("sequence:%s:%d", GetTypeName[T](), userId)

	rdb := config.GetRedisDB()
	if rdb != nil {
		exists, err := rdb.Exists(ctx, key).Result()
		if err != nil {
			return 0, err
		}
		if exists == 0 {
			maxSeq, err := maxSequenceNo[T](ctx, userId)
			if err != nil {
				return 0, err
			}
			if err := rdb.Set(ctx, key, maxSeq, 0).Err(); err != nil {
				return 0, err
			}
		}

		for i := 0; i < 10; i++ {
			seq, err := config.GetRedisCounter(ctx, key)
			if err != nil {
				return 0, err
			}
			count, err := ResourceCountWhere[T](ctx, userId, "sequence_no = ?", seq)
			if err != nil {
				return 0, err
			}
			if count == 0 {
				return seq, nil
			}
		}
		return 0, ConflictError("could not allocate sequence number")
	}

	// no redis; fall back to a plain table scan
	maxSeq, err := maxSequenceNo[T](ctx, userId)
	if err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}

func maxSequenceNo[T any](ctx context.Context, userId int) (int64, error) {
	var model T
	var maxSeq int64

	db := config.GetDB()
	err := db.WithContext(ctx).Model(&model).
		Where("user_id = ?", userId).
		Select("COALESCE(MAX(sequence_no), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq, nil
}
