package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	// StorageQuotaBytes caps the key-value store; 0 means unlimited.
	StorageQuotaBytes int64

	UploadDir     string
	UseS3         bool
	S3Bucket      string
	S3Region      string
	CloudFrontURL string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr:        getEnv("SERVER_ADDR", ":8080"),
		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", "survey"),
		SQLitePath:        getEnv("SQLITE_PATH", "survey.db"),
		StorageQuotaBytes: getEnvInt("STORAGE_QUOTA_BYTES", 0),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		UseS3:             getEnvBool("USE_S3", false),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		CloudFrontURL:     getEnv("CLOUDFRONT_URL", ""),
	}

	log.Println("✅ Config loaded")
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("⚠️  Ignoring invalid %s=%q", key, v)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("⚠️  Ignoring invalid %s=%q", key, v)
		return fallback
	}
	return b
}
