package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	JWTSecret  string
	TokenTTL   time.Duration
	Database   DatabaseConfig
	Events     EventsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// EventsConfig selects the account-event broker. Backend is one of "none",
// "rabbitmq", or "pubsub".
type EventsConfig struct {
	Backend  string
	Channel  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL          string
	QueueDurable bool
}

type PubSubConfig struct {
	ProjectID       string
	CredentialsFile string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "myuser"),
		Password: getEnv("DB_PASSWORD", "mypassword"),
		DBName:   getEnv("DB_NAME", "testDB"),
		UseSSL:   getEnvBool("DB_SSL", false),
	}

	eventsConfig := EventsConfig{
		Backend: strings.ToLower(getEnv("EVENTS_BACKEND", "none")),
		Channel: getEnv("EVENTS_CHANNEL", ""),
		RabbitMQ: RabbitMQConfig{
			URL:          getEnv("RABBITMQ_URL", ""),
			QueueDurable: getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
		},
		PubSub: PubSubConfig{
			ProjectID:       getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile: getEnv("PUBSUB_CREDENTIALS_FILE", ""),
		},
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		JWTSecret:  getEnv("JWT_SECRET_KEY", "secretkey"),
		TokenTTL:   time.Duration(getEnvInt("JWT_EXPIRY_MINUTES", 10)) * time.Minute,
		Database:   dbConfig,
		Events:     eventsConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return defaultValue
}
