package db

import (
	"Gin_postgres_redis_invent_tool/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{}, &models.Branch{}, &models.OEM{}, &models.Client{},
		&models.Product{}, &models.Unit{},
		&models.Request{}, &models.Selection{}, &models.SelectionUnit{},
		&models.IssuanceRecord{}, &models.ReturnRecord{},
	); err != nil {
		return err
	}

	// 找可用库存走这条索引
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_available_by_product
	  ON %s (product_id)
	  WHERE available;
	`, models.UnitTable, models.UnitTable)).Error; err != nil {
		return err
	}

	// 一个 request 同时最多一条待审批 selection
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_pending_per_request
	  ON %s (request_id)
	  WHERE status = 'Pending';
	`, models.SelectionTable, models.SelectionTable)).Error; err != nil {
		return err
	}

	return nil
}
