package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	ServerPort  string
	JWTSecret   string
	NATSURL     string
	PushSubject string
	AppEnv      string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "taskhub_user"),
		DBPassword:  getEnv("DB_PASSWORD", "taskhub_pass"),
		DBName:      getEnv("DB_NAME", "taskhub_db"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "supersecretkey"),
		NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),
		PushSubject: getEnv("PUSH_SUBJECT", "push.notifications"),
		AppEnv:      getEnv("APP_ENV", "development"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
