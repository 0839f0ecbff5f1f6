package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
)

// User doubles as the tenant: every billing entity carries the owning
// user's id and all queries are scoped by it.
type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email" binding:"required"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	IsAdmin   *bool     `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthPayload struct {
	UserId int    `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func (input *NewUser) validate(ctx context.Context) error {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return utils.InvalidInputError("please provide all fields")
	}
	if !utils.IsValidEmail(input.Email) {
		return utils.InvalidInputError("invalid email address")
	}
	if len(input.Password) < 6 {
		return utils.InvalidInputError("password must be at least 6 characters")
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", strings.ToLower(input.Email)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return utils.InvalidInputError("user already exists")
	}
	return nil
}

func Register(ctx context.Context, input *NewUser) (*AuthPayload, error) {
	db := config.GetDB()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Name:     input.Name,
		Email:    strings.ToLower(input.Email),
		Password: string(hashed),
		IsAdmin:  utils.NewFalse(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	token, err := utils.JwtGenerate(user.ID, user.Name)
	if err != nil {
		return nil, err
	}

	return &AuthPayload{UserId: user.ID, Name: user.Name, Email: user.Email, Token: token}, nil
}

func Login(ctx context.Context, email string, password string) (*AuthPayload, error) {
	db := config.GetDB()

	if email == "" || password == "" {
		return nil, utils.InvalidInputError("please provide email and password")
	}

	var user User
	if err := db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, utils.InvalidInputError("invalid email or password")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, utils.InvalidInputError("invalid email or password")
	}

	token, err := utils.JwtGenerate(user.ID, user.Name)
	if err != nil {
		return nil, err
	}

	return &AuthPayload{UserId: user.ID, Name: user.Name, Email: user.Email, Token: token}, nil
}

// Logout revokes the presented token until its natural expiry.
func Logout(ctx context.Context, token string) error {
	if token == "" {
		return utils.InvalidInputError("token required")
	}
	return config.SetRedisValue("revoked:"+token, "1", 24*time.Hour)
}

func IsTokenRevoked(token string) bool {
	rdb := config.GetRedisDB()
	if rdb == nil {
		return false
	}
	n, err := rdb.Exists(config.GetRedisContext(), "revoked:"+token).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func GetUser(ctx context.Context, id int) (*User, error) {
	user, err := utils.FetchSingleModel[User](ctx, id)
	if err != nil {
		return nil, utils.NotFoundError("user not found")
	}
	return user, nil
}
