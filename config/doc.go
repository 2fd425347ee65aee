// Package config loads ClientConfig from config.yml, a .env file and
// ARMKIT_-prefixed environment variables using viper and godotenv.
//
//	var cfg config.ClientConfig
//	if err := config.LoadConfig("armctl", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// Environment variables win over file values: ARMKIT_ENDPOINT sets endpoint
// and ARMKIT_AUTH_CLIENT_SECRET sets auth.client_secret.
package config
