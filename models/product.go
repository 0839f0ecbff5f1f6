package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"github.com/shopspring/decimal"
)

// Product is a catalog item. Bills copy name/rate/unit/gstRate at creation
// time, so editing or archiving a product never rewrites issued bills.
type Product struct {
	ID           int             `gorm:"primary_key" json:"id"`
	UserId       int             `gorm:"index;not null" json:"user_id"`
	Name         string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Unit         ProductUnit     `gorm:"type:enum('Pcs','Mtr','Kg','Box','Set','Ltr');not null;default:'Pcs'" json:"unit"`
	DefaultPrice decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"default_price"`
	GstRate      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"gst_rate"`
	Description  string          `gorm:"type:text" json:"description"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name         string          `json:"name" binding:"required"`
	Unit         ProductUnit     `json:"unit"`
	DefaultPrice decimal.Decimal `json:"default_price"`
	GstRate      decimal.Decimal `json:"gst_rate"`
	Description  string          `json:"description"`
}

type UpdateProductInput struct {
	Name         *string          `json:"name"`
	Unit         *ProductUnit     `json:"unit"`
	DefaultPrice *decimal.Decimal `json:"default_price"`
	GstRate      *decimal.Decimal `json:"gst_rate"`
	Description  *string          `json:"description"`
	IsActive     *bool            `json:"is_active"`
}

type ProductsPage struct {
	Products []*Product `json:"products"`
	PageInfo *PageInfo  `json:"pageInfo"`
}

func (input *NewProduct) validate(ctx context.Context, userId int, id int) error {
	if input.Name == "" {
		return utils.InvalidInputError("name and price are required")
	}
	if input.Unit != "" && !input.Unit.IsValid() {
		return utils.InvalidInputError("invalid product unit")
	}
	if input.DefaultPrice.IsNegative() {
		return utils.InvalidInputError("price must not be negative")
	}
	if input.GstRate.IsNegative() || input.GstRate.GreaterThan(decimal.NewFromInt(100)) {
		return utils.InvalidInputError("gst rate must be between 0 and 100")
	}
	if id > 0 {
		if err := utils.ValidateResourceId[Product](ctx, userId, id); err != nil {
			return err
		}
	}
	return utils.ValidateUnique[Product](ctx, userId, "name", input.Name, id)
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	unit := input.Unit
	if unit == "" {
		unit = ProductUnitPcs
	}

	product := Product{
		UserId:       userId,
		Name:         input.Name,
		Unit:         unit,
		DefaultPrice: input.DefaultPrice,
		GstRate:      input.GstRate,
		Description:  input.Description,
		IsActive:     utils.NewTrue(),
	}

	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}

	_ = utils.RemoveRedisList[Product](userId)
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *UpdateProductInput) (*Product, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	product, err := utils.FetchModel[Product](ctx, userId, id)
	if err != nil {
		return nil, utils.NotFoundError("product not found")
	}

	if input.Name != nil && *input.Name != "" && *input.Name != product.Name {
		if err := utils.ValidateUnique[Product](ctx, userId, "name", *input.Name, id); err != nil {
			return nil, err
		}
		product.Name = *input.Name
	}
	if input.Unit != nil {
		if !input.Unit.IsValid() {
			return nil, utils.InvalidInputError("invalid product unit")
		}
		product.Unit = *input.Unit
	}
	if input.DefaultPrice != nil {
		if input.DefaultPrice.IsNegative() {
			return nil, utils.InvalidInputError("price must not be negative")
		}
		product.DefaultPrice = *input.DefaultPrice
	}
	if input.GstRate != nil {
		if input.GstRate.IsNegative() || input.GstRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, utils.InvalidInputError("gst rate must be between 0 and 100")
		}
		product.GstRate = *input.GstRate
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.IsActive != nil {
		product.IsActive = input.IsActive
	}

	if err := db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}

	_ = utils.RemoveRedisList[Product](userId)
	return product, nil
}

// ToggleActiveProduct archives/restores a product. Archived products stay
// referenced by historical bills; there is no hard delete.
func ToggleActiveProduct(ctx context.Context, id int, isActive bool) (*Product, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	product, err := utils.FetchModel[Product](ctx, userId, id)
	if err != nil {
		return nil, utils.NotFoundError("product not found")
	}

	product.IsActive = &isActive
	if err := db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}

	_ = utils.RemoveRedisList[Product](userId)
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	product, err := utils.FetchModel[Product](ctx, userId, id)
	if err != nil {
		return nil, utils.NotFoundError("product not found")
	}
	return product, nil
}

func GetProducts(ctx context.Context, page int, limit int, search string, activeOnly bool) (*ProductsPage, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	page, limit, offset := normalizePaging(page, limit, 100)

	dbCtx := db.WithContext(ctx).Model(&Product{}).Where("user_id = ?", userId)
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	if search != "" {
		dbCtx = dbCtx.Where("name LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, err
	}

	var products []*Product
	if err := dbCtx.Order("name ASC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		return nil, err
	}

	return &ProductsPage{
		Products: products,
		PageInfo: makePageInfo(page, limit, total),
	}, nil
}

// SearchProducts powers autocomplete; active products only.
func SearchProducts(ctx context.Context, query string) ([]*Product, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if len(query) < 2 {
		return []*Product{}, nil
	}

	var products []*Product
	err := db.WithContext(ctx).Model(&Product{}).
		Where("user_id = ? AND is_active = ?", userId, true).
		Where("name LIKE ? OR description LIKE ?", "%"+query+"%", "%"+query+"%").
		Select("id", "name", "unit", "default_price", "gst_rate").
		Limit(config.SearchLimit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListActiveProducts returns the tenant's full active catalog, redis-cached.
func ListActiveProducts(ctx context.Context) ([]*Product, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if cached, ok := utils.RetrieveListFromRedis[Product](userId); ok {
		return cached, nil
	}

	var products []*Product
	err := db.WithContext(ctx).Model(&Product{}).
		Where("user_id = ? AND is_active = ?", userId, true).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	_ = utils.StoreListToRedis(userId, products)
	return products, nil
}
