package models

import (
	"context"
	"strconv"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
)

// NextBillNumber allocates the next bill number for the tenant from an
// atomic per-tenant counter. Numbers are plain decimal strings starting
// at "1"; ordering is numeric via the stored sequence number, never
// lexicographic. Concurrent creators can never receive the same number.
func NextBillNumber(ctx context.Context, userId int) (string, int64, error) {
	seq, err := utils.GetSequence[Bill](ctx, userId)
	if err != nil {
		return "", 0, err
	}
	return strconv.FormatInt(seq, 10), seq, nil
}

// PeekNextBillNumber previews the next number without reserving it.
// Two callers may see the same preview; the reservation happens only in
// NextBillNumber at creation time.
func PeekNextBillNumber(ctx context.Context, userId int) (string, error) {
	db := config.GetDB()

	var maxSeq int64
	err := db.WithContext(ctx).Model(&Bill{}).
		Where("user_id = ?", userId).
		Select("COALESCE(MAX(sequence_no), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(maxSeq+1, 10), nil
}
