package config

import "time"

// AuthConfig holds runtime configuration for the identity authority.
type AuthConfig struct {
	Environment   string
	Addr          string
	DatabaseURL   string
	MigrationsDir string
	JWTSecret     string
	TokenTTL      time.Duration
}

// LoadAuthConfig constructs an AuthConfig from environment variables.
func LoadAuthConfig() AuthConfig {
	return AuthConfig{
		Environment:   GetString("APP_ENV", "development"),
		Addr:          GetString("AUTH_ADDR", ":4000"),
		DatabaseURL:   GetString("DATABASE_URL", "postgres://passport:passport@db:5432/passport?sslmode=disable"),
		MigrationsDir: GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		JWTSecret:     GetString("JWT_SECRET", "supersecuresecret"),
		TokenTTL:      time.Duration(GetInt("TOKEN_TTL_MIN", 60)) * time.Minute,
	}
}
