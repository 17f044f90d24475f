package config

import (
	logger "github.com/Bparsons0904/goLogger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset   int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	AuthJWTSecret        string `mapstructure:"AUTH_JWT_SECRET"`
	StemBucket           string `mapstructure:"STEM_BUCKET"`
	StemPrefix           string `mapstructure:"STEM_PREFIX"`
	StemS3Endpoint       string `mapstructure:"STEM_S3_ENDPOINT"`
	StemS3Region         string `mapstructure:"STEM_S3_REGION"`
	StemS3AccessKey      string `mapstructure:"STEM_S3_ACCESS_KEY"`
	StemS3SecretKey      string `mapstructure:"STEM_S3_SECRET_KEY"`
	DeezerBaseURL        string `mapstructure:"DEEZER_BASE_URL"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
	CatalogTTLMinutes    int    `mapstructure:"CATALOG_TTL_MINUTES"`
}

var ConfigInstance Config

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
		"CORS_ALLOW_ORIGINS", "AUTH_JWT_SECRET",
		"STEM_BUCKET", "STEM_PREFIX", "STEM_S3_ENDPOINT", "STEM_S3_REGION",
		"STEM_S3_ACCESS_KEY", "STEM_S3_SECRET_KEY",
		"DEEZER_BASE_URL", "SCHEDULER_ENABLED", "CATALOG_TTL_MINUTES",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config", "environment", config.Environment)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.StemBucket == "" {
		return log.Error("Fatal error: STEM_BUCKET is required")
	}

	if config.AuthJWTSecret == "" {
		return log.Error("Fatal error: AUTH_JWT_SECRET is required")
	}

	if config.StemPrefix == "" {
		config.StemPrefix = "stems/"
	}
	if config.DeezerBaseURL == "" {
		config.DeezerBaseURL = "https://api.deezer.com"
	}
	if config.CatalogTTLMinutes <= 0 {
		config.CatalogTTLMinutes = 60
	}

	ConfigInstance = config
	return nil
}
