// Package config provides configuration management for the demo backend.
//
// Configuration is loaded from environment variables using the env package,
// after an optional .env file in the working directory has been applied.
// Every value has a default, so the service starts with no environment at all.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("HTTP server will listen on %s\n", cfg.GetHTTPAddr())
package config
