package env

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	TelegramBotToken string
	TelegramChatID   int64

	BasescanAPIKey string

	Port string

	DatabaseURL string

	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDatabase string

	ConfigPath string
)

func loadEnvVariable(key string, isRequired bool) string {
	value := os.Getenv(key)
	if isRequired && value == "" {
		log.Fatalf("FATAL: Environment variable %s is required but not set.", key)
	}
	isHidden := key == "TELEGRAM_BOT_TOKEN" || key == "BASESCAN_API_KEY" || key == "PGPASSWORD" || key == "DATABASE_URL"
	if value == "" {
		if !isRequired {
			log.Printf("INFO: Environment variable %s is not set.", key)
		}
	} else if isHidden {
		log.Printf("INFO: Loaded %s (value hidden)", key)
	} else {
		log.Printf("INFO: Loaded %s = %s", key, value)
	}
	return value
}

func loadInt64Env(key string, required bool) int64 {
	strValue := loadEnvVariable(key, required)
	if strValue == "" {
		if !required {
			return 0
		}
		log.Fatalf("FATAL: Required int64 environment variable %s is missing after load.", key)
		return 0
	}
	id, err := strconv.ParseInt(strValue, 10, 64)
	if err != nil {
		log.Fatalf("FATAL: Failed to parse int64 environment variable %s='%s': %v", key, strValue, err)
	}
	return id
}

func LoadEnv() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("INFO: .env file not found or error loading, relying on system environment variables.")
	} else {
		log.Println("INFO: .env file loaded successfully.")
	}

	TelegramBotToken = loadEnvVariable("TELEGRAM_BOT_TOKEN", false)
	TelegramChatID = loadInt64Env("TELEGRAM_CHAT_ID", false)
	BasescanAPIKey = loadEnvVariable("BASESCAN_API_KEY", false)

	Port = loadEnvVariable("PORT", false)
	if Port == "" {
		Port = "8080"
		log.Printf("INFO: PORT not set, defaulting to %s", Port)
	}

	ConfigPath = loadEnvVariable("CONFIG_PATH", false)
	if ConfigPath == "" {
		ConfigPath = "monitor/config.yaml"
	}

	DatabaseURL = loadEnvVariable("DATABASE_URL", false)

	PGHost = loadEnvVariable("PGHOST", false)
	PGPort = loadEnvVariable("PGPORT", false)
	PGUser = loadEnvVariable("PGUSER", false)
	PGPassword = loadEnvVariable("PGPASSWORD", false)
	PGDatabase = loadEnvVariable("PGDATABASE", false)

	if TelegramBotToken != "" && TelegramChatID == 0 {
		log.Println("WARN: TELEGRAM_BOT_TOKEN is set, but TELEGRAM_CHAT_ID is missing, invalid, or zero.")
	}
	if DatabaseURL == "" && PGHost == "" {
		log.Println("WARN: Neither DATABASE_URL nor PG* variables are set. The ledger will run in-memory only.")
	}

	log.Println("INFO: Environment variables loading process complete.")
	return nil
}

// DatabaseDSN resolves the connection string, preferring DATABASE_URL over the
// individual PG* variables. Returns "" when no database is configured.
func DatabaseDSN() string {
	if DatabaseURL != "" {
		return DatabaseURL
	}
	if PGHost == "" || PGUser == "" || PGDatabase == "" {
		return ""
	}
	port := PGPort
	if port == "" {
		port = "5432"
	}
	return "host=" + PGHost + " user=" + PGUser + " password=" + PGPassword +
		" dbname=" + PGDatabase + " port=" + port + " sslmode=disable TimeZone=UTC"
}
