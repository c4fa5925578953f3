package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	DBDriver   string // sqlite, postgres or mysql
	DBName     string
	DBHost     string
	DBUser     string
	DBPassword string
	DBPort     string

	// Contract addresses and the deployer that receives the admin roles
	DeployerAddress    string
	TokenAddress       string
	CertificateAddress string
	MarketAddress      string

	// Economy constants, fixed for the lifetime of the ledger
	TokensPerUnit uint64
	MaxSupply     uint64

	MetadataBaseURL         string
	AllowCertificateReissue bool

	IndexerWebhookURL   string
	CompletionOracleURL string
	ReconcileCron       string
	CourseSeedFile      string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBName:     getEnv("DB_NAME", "yideng.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBPort:     getEnv("DB_PORT", "5432"),

		DeployerAddress:    getEnv("DEPLOYER_ADDRESS", "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"),
		TokenAddress:       getEnv("TOKEN_ADDRESS", "0x5fbdb2315678afecb367f032d93f642f64180aa3"),
		CertificateAddress: getEnv("CERTIFICATE_ADDRESS", "0xe7f1725e7734ce288f8367e1bb143e90bb3f0512"),
		MarketAddress:      getEnv("MARKET_ADDRESS", "0x9fe46736679d2d9a65f0992f2272de9f3c7fa6e0"),

		TokensPerUnit: getEnvUint64("TOKENS_PER_UNIT", 1000),
		MaxSupply:     getEnvUint64("MAX_SUPPLY", 1250000),

		MetadataBaseURL:         getEnv("METADATA_BASE_URL", "https://api.yideng.com/certificate"),
		AllowCertificateReissue: getEnvBool("ALLOW_CERTIFICATE_REISSUE", false),

		IndexerWebhookURL:   getEnv("INDEXER_WEBHOOK_URL", ""),
		CompletionOracleURL: getEnv("COMPLETION_ORACLE_URL", ""),
		ReconcileCron:       getEnv("RECONCILE_CRON", "@every 10m"),
		CourseSeedFile:      getEnv("COURSE_SEED_FILE", ""),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.TokensPerUnit == 0 {
		log.Fatal("TOKENS_PER_UNIT must be greater than 0")
	}
	if AppConfig.MaxSupply == 0 {
		log.Fatal("MAX_SUPPLY must be greater than 0")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		log.Printf("Error converting environment variable %s to uint64: %v", key, err)
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return parsed
}
