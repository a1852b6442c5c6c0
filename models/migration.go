package models

import (
	"log"

	"github.com/wafirapp/wafir-backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Investment{},
		&Expense{}, &Budget{},
		&AdvisorRequest{}, &Message{},
		&Notification{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
