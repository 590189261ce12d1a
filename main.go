package main

import (
	"context"
	"log"
	"os"

	"book-market/internal/cache"
	"book-market/internal/config"
	"book-market/internal/delivery/http/route"
	"book-market/internal/delivery/ws"
	"book-market/internal/storage"
)

// @title           Book Market API
// @version         1.0
// @description     Community library with a second-hand book marketplace: catalog, loans, listings, offer negotiation, messaging and seller reviews.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	config.LoadEnv()

	config.ConnectPostgres()
	config.ConnectMongo()

	c, err := cache.Open(os.Getenv("BADGER_DIR"))
	if err != nil {
		log.Fatal("Failed to open cache:", err)
	}
	defer c.Close()

	var store storage.Store
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcs, err := storage.NewGCSStore(context.Background(), bucket, os.Getenv("GCS_CREDENTIALS_FILE"))
		if err != nil {
			log.Fatal("Failed to init GCS storage:", err)
		}
		store = gcs
	} else {
		local, err := storage.NewLocalStore("uploads", "/uploads")
		if err != nil {
			log.Fatal("Failed to init local storage:", err)
		}
		store = local
	}

	app := config.SetupGin()
	if _, ok := store.(*storage.LocalStore); ok {
		app.Static("/uploads", "uploads")
	}

	hub := ws.NewHub()
	route.SetupRoute(app, config.PostgresDB, config.MongoClient, c, store, hub)

	config.SetupServer(app, hub)
}
