package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string

	SecretKey []byte
	Algorithm string
	TokenTTL  time.Duration

	MongoHost     string
	MongoPort     string
	MongoUser     string
	MongoPassword string
	MongoDB       string
	MongoURI      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// Load reads .env (when present) and the process environment into a Config.
// Components receive the Config explicitly; there is no package-level
// configuration state.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIPort:         getEnv("API_PORT", "8080"),
		SecretKey:       []byte(getEnv("SECRET_KEY", "defaultsecret")),
		Algorithm:       getEnv("ALGORITHM", "HS256"),
		TokenTTL:        time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,
		MongoHost:       getEnv("MONGO_HOST", "localhost"),
		MongoPort:       getEnv("MONGO_PORT", "27017"),
		MongoUser:       getEnv("MONGO_USERNAME", "user"),
		MongoPassword:   getEnv("MONGO_PASSWORD", "password"),
		MongoDB:         getEnv("MONGO_DB", "task_management_db"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		LoginRateLimit:  getEnvAsInt("LOGIN_RATE_LIMIT", 10),
		LoginRateWindow: time.Duration(getEnvAsInt("LOGIN_RATE_WINDOW_SECONDS", 60)) * time.Second,
	}

	cfg.MongoURI = "mongodb://" + cfg.MongoUser + ":" + cfg.MongoPassword +
		"@" + cfg.MongoHost + ":" + cfg.MongoPort + "/" + cfg.MongoDB +
		"?authSource=admin"

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
