package main

import (
	"github.com/zixindh/counter/internal/config" // Custom import path (Config)
	"github.com/zixindh/counter/internal/db"     // Custom import path (Database)
)

// Main entry point for the MySQL backend migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	db.Migrate(cfg.DSN()) // Create the tallies table
}
