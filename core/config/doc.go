// Package config provides configuration management for the reference-data
// manager.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: entity store connection details
//   - Storage: S3/MinIO credentials and the vendor-feed bucket
//   - Log: logging level and format
//   - Events: change-event queue sizing
//   - Ingest: batch worker parallelism
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
