package main

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the app needs at startup. Values come from
// environment variables (optionally via a .env file), with a config.yaml
// as an alternative, and sane dev defaults below.
type Config struct {
	Port   int
	Env    string
	Pepper string

	JWTSecret string
	JWTTTL    time.Duration

	Database PostgresConfig
}

// IsProd reports whether the app runs in production mode.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// ConnectionInfo builds the postgres connection string.
func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable",
			pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// LoadConfig loads the configuration. In production mode the JWT secret
// and pepper must not be left at their dev defaults.
func LoadConfig() (Config, error) {
	// A .env file is optional, real env vars win either way.
	_ = godotenv.Load()

	viper.SetDefault("PORT", 1111)
	viper.SetDefault("ENV", "dev")
	viper.SetDefault("PEPPER", "secret-random-string")
	viper.SetDefault("JWT_SECRET", "secret-jwt-key")
	viper.SetDefault("JWT_TTL", "24h")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_NAME", "wtf_social")

	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	c := Config{
		Port:      viper.GetInt("PORT"),
		Env:       viper.GetString("ENV"),
		Pepper:    viper.GetString("PEPPER"),
		JWTSecret: viper.GetString("JWT_SECRET"),
		JWTTTL:    viper.GetDuration("JWT_TTL"),
		Database: PostgresConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
	}

	if c.IsProd() {
		if c.JWTSecret == "secret-jwt-key" || c.Pepper == "secret-random-string" {
			return c, fmt.Errorf("refusing to start in prod with default secrets")
		}
	}
	return c, nil
}
