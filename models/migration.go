package models

import (
	"bitbucket.org/mmdatafocus/billbook_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&User{},
		&Company{},
		&Customer{},
		&Product{},
		&Bill{},
		&BillItem{},
		&Payment{},
	)
}
