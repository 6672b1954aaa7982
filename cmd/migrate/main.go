package main

import (
	"fmt"
	"log"

	"tailor-sms-dispatch/internal/config"
	"tailor-sms-dispatch/internal/domain"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	_ = godotenv.Load()

	conf := config.FromEnv()

	fmt.Println("Connecting to database...")

	db, err := gorm.Open(postgres.Open(conf.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}

	sqlDB, _ := db.DB()
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	fmt.Println("Running migrations...")

	if err := db.AutoMigrate(&domain.AuditRecord{}); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	var tables []string
	db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables)

	fmt.Println("Migration complete. Tables:")
	for _, table := range tables {
		fmt.Printf("  - %s\n", table)
	}
}
