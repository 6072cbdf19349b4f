// Package config provides configuration management for itunes2storage.
//
// It utilizes Viper for loading configuration from a settings file (settings.json by default),
// environment variables prefixed with I2S_, and a .env file loaded through godotenv.
// Default values live next to each field in `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings:
//   - targetPath, itunesXMLPath, playlistPrefix: what to mirror and where (required)
//   - appDir, playlistAuthor, workers: mirror layout and execution
//   - Storage: filesystem backend
//   - Log: Logging level, format and optional rotated file
//   - Metrics: node-exporter textfile path
//   - Trace: span exporter
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.TargetPath)
package config
