package main

import (
	"log"

	"github.com/joho/godotenv"

	"finance-tracker-go/internal/config"
	"finance-tracker-go/internal/database"
	httpserver "finance-tracker-go/internal/http"
	"finance-tracker-go/internal/models"
)

func main() {
	_ = godotenv.Load(".env")

	database.Connect()
	database.DB.AutoMigrate(&models.User{}, &models.FixedExpense{}, &models.Transaction{})

	cfg := config.Load()
	r := httpserver.NewServer(cfg, database.DB)
	log.Printf("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
