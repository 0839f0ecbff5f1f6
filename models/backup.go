package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/billbook_backend/utils"
)

const backupVersion = "1.0"

type BackupData struct {
	User      *User       `json:"user"`
	Company   *Company    `json:"company"`
	Customers []*Customer `json:"customers"`
	Products  []*Product  `json:"products"`
	Bills     []*Bill     `json:"bills"`
	Payments  []*Payment  `json:"payments"`
}

type Backup struct {
	Timestamp time.Time  `json:"timestamp"`
	Version   string     `json:"version"`
	Data      BackupData `json:"data"`
}

// GetBackup assembles a full export of the tenant's records for download.
// Everything is scoped to the requesting tenant; the user record omits the
// password hash via its json tag, and a missing company profile is exported
// as null rather than failing the whole dump.
func GetBackup(ctx context.Context) (*Backup, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	user, err := GetUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	company, err := GetCompany(ctx)
	if err != nil {
		if !utils.IsNotFound(err) {
			return nil, err
		}
		company = nil
	}

	customers, err := utils.FetchAllModels[Customer](ctx, userId)
	if err != nil {
		return nil, err
	}
	products, err := utils.FetchAllModels[Product](ctx, userId)
	if err != nil {
		return nil, err
	}
	bills, err := utils.FetchAllModels[Bill](ctx, userId, "Items")
	if err != nil {
		return nil, err
	}
	payments, err := utils.FetchAllModels[Payment](ctx, userId)
	if err != nil {
		return nil, err
	}

	return &Backup{
		Timestamp: time.Now().UTC(),
		Version:   backupVersion,
		Data: BackupData{
			User:      user,
			Company:   company,
			Customers: customers,
			Products:  products,
			Bills:     bills,
			Payments:  payments,
		},
	}, nil
}
