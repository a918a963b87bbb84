package config

import "time"

// UserConfig holds runtime configuration for the relying user service.
type UserConfig struct {
	Environment    string
	Addr           string
	DatabaseURL    string
	MigrationsDir  string
	AuthServiceURL string
	VerifyTimeout  time.Duration
}

// LoadUserConfig constructs a UserConfig from environment variables.
func LoadUserConfig() UserConfig {
	return UserConfig{
		Environment:    GetString("APP_ENV", "development"),
		Addr:           GetString("USER_ADDR", ":4001"),
		DatabaseURL:    GetString("DATABASE_URL", "postgres://passport:passport@db:5432/passport?sslmode=disable"),
		MigrationsDir:  GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		AuthServiceURL: GetString("AUTH_SERVICE_URL", "http://auth-service:4000"),
		VerifyTimeout:  time.Duration(GetInt("VERIFY_TIMEOUT_SECONDS", 5)) * time.Second,
	}
}
