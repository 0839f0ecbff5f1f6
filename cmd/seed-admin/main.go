// seed-admin creates or updates the operations console user.
// Admin users bypass tenant scoping, so keep the credentials out of
// source control in real deployments.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
	"bitbucket.org/mmdatafocus/billbook_backend/models"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@billbook.local"
	defaultAdminPassword = "B!llbookAdmin"
	defaultAdminName     = "BillBook Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	if err := models.MigrateTable(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate tables: %v\n", err)
		os.Exit(1)
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = defaultAdminEmail
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = defaultAdminPassword
	}
	adminName := os.Getenv("ADMIN_NAME")
	if adminName == "" {
		adminName = defaultAdminName
	}

	ctx = utils.SetUsernameInContext(ctx, adminName)
	ctx = utils.SetIsAdminInContext(ctx, true)
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("email = ?", adminEmail).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		// Create new admin user
		u := models.User{
			Name:     adminName,
			Email:    adminEmail,
			Password: hashedStr,
			IsAdmin:  utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created admin user %s (id=%d)\n", adminEmail, u.ID)
		return
	}

	// Update existing admin user's password and flags.
	updates := map[string]interface{}{
		"name":     adminName,
		"password": hashedStr,
		"is_admin": true,
	}
	if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("updated admin user %s (id=%d)\n", adminEmail, existing.ID)
}
