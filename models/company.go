package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"gorm.io/gorm"
)

// Company is the tenant's own business profile printed on bills.
// One row per tenant; UpsertCompany creates it on first save.
type Company struct {
	ID                 int       `gorm:"primary_key" json:"id"`
	UserId             int       `gorm:"uniqueIndex;not null" json:"user_id"`
	Name               string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Address            string    `gorm:"type:text" json:"address"`
	City               string    `gorm:"size:100" json:"city"`
	State              string    `gorm:"size:100" json:"state"`
	Pincode            string    `gorm:"size:10" json:"pincode"`
	Phone              string    `gorm:"size:20" json:"phone"`
	Email              string    `gorm:"size:100" json:"email"`
	GstNumber          string    `gorm:"size:20" json:"gst_number"`
	GstEnabled         *bool     `gorm:"not null;default:false" json:"gst_enabled"`
	TermsAndConditions string    `gorm:"type:text" json:"terms_and_conditions"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	Name               string  `json:"name" binding:"required"`
	Address            *string `json:"address"`
	City               *string `json:"city"`
	State              *string `json:"state"`
	Pincode            *string `json:"pincode"`
	Phone              *string `json:"phone"`
	Email              *string `json:"email"`
	GstNumber          *string `json:"gst_number"`
	GstEnabled         *bool   `json:"gst_enabled"`
	TermsAndConditions *string `json:"terms_and_conditions"`
}

func GetCompany(ctx context.Context) (*Company, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	var company Company
	err := db.WithContext(ctx).Where("user_id = ?", userId).First(&company).Error
	if err != nil {
		return nil, utils.NotFoundError("company not found")
	}
	return &company, nil
}

func UpsertCompany(ctx context.Context, input *NewCompany) (*Company, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if input.Email != nil && *input.Email != "" && !utils.IsValidEmail(*input.Email) {
		return nil, utils.InvalidInputError("invalid email address")
	}

	var company Company
	err := db.WithContext(ctx).Where("user_id = ?", userId).First(&company).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if input.Name == "" {
			return nil, utils.InvalidInputError("company name is required")
		}
		company = Company{
			UserId:     userId,
			Name:       input.Name,
			GstEnabled: utils.NewFalse(),
		}
	}

	if input.Name != "" {
		company.Name = input.Name
	}
	if input.Address != nil {
		company.Address = *input.Address
	}
	if input.City != nil {
		company.City = *input.City
	}
	if input.State != nil {
		company.State = *input.State
	}
	if input.Pincode != nil {
		company.Pincode = *input.Pincode
	}
	if input.Phone != nil {
		company.Phone = *input.Phone
	}
	if input.Email != nil {
		company.Email = *input.Email
	}
	if input.GstNumber != nil {
		company.GstNumber = *input.GstNumber
	}
	if input.GstEnabled != nil {
		company.GstEnabled = input.GstEnabled
	}
	if input.TermsAndConditions != nil {
		company.TermsAndConditions = *input.TermsAndConditions
	}

	if err := db.WithContext(ctx).Save(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}
