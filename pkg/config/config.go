package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Classifier ClassifierConfig
	JWT        JWTConfig
	Pipeline   PipelineConfig
	Logger     LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// PoolSize connections are kept open; up to PoolOverflow more may be
	// created under load.
	PoolSize     int
	PoolOverflow int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Bucket          string
	CDNDomain       string
	CredentialsFile string
}

type ClassifierConfig struct {
	Endpoint string
	APIKey   string
	Labels   []string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// Upload failure policies: abort fails the whole request, best_effort returns
// the prediction without a photo URL and skips the history write.
const (
	UploadPolicyAbort      = "abort"
	UploadPolicyBestEffort = "best_effort"
)

type PipelineConfig struct {
	ClassifyTimeout time.Duration
	LookupTimeout   time.Duration
	UploadPolicy    string
}

// defaultLabels is the label set the bundled model was trained on, in output
// index order.
var defaultLabels = []string{
	"Belimbing Wuluh", "Daun Jambu Biji", "Daun Jarak", "Daun Kelor",
	"Daun Pepaya", "Jahe", "Kunyit", "Lidah Buaya", "Sirih", "Temulawak",
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine; environment variables are used directly
	// (Docker/Cloud Run).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	poolSize, _ := strconv.Atoi(getEnv("DB_POOL_SIZE", "5"))
	poolOverflow, _ := strconv.Atoi(getEnv("DB_POOL_OVERFLOW", "10"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	classifyTimeout, _ := strconv.Atoi(getEnv("CLASSIFY_TIMEOUT_SECONDS", "15"))
	lookupTimeout, _ := strconv.Atoi(getEnv("LOOKUP_TIMEOUT_SECONDS", "5"))

	labels := defaultLabels
	if raw := os.Getenv("PLANT_LABELS"); raw != "" {
		labels = nil
		for _, l := range strings.Split(raw, ",") {
			if l = strings.TrimSpace(l); l != "" {
				labels = append(labels, l)
			}
		}
	}

	uploadPolicy := getEnv("STORAGE_UPLOAD_POLICY", UploadPolicyAbort)
	if uploadPolicy != UploadPolicyAbort && uploadPolicy != UploadPolicyBestEffort {
		uploadPolicy = UploadPolicyAbort
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			DBName:       getEnv("DB_NAME", "db_herba_guide"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			PoolSize:     poolSize,
			PoolOverflow: poolOverflow,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Storage: StorageConfig{
			Bucket:          getEnv("GCS_BUCKET_NAME", ""),
			CDNDomain:       getEnv("GCS_CDN_DOMAIN", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Classifier: ClassifierConfig{
			Endpoint: getEnv("CLASSIFIER_ENDPOINT", "http://localhost:8501/v1/models/herba:predict"),
			APIKey:   getEnv("CLASSIFIER_API_KEY", ""),
			Labels:   labels,
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Pipeline: PipelineConfig{
			ClassifyTimeout: time.Duration(classifyTimeout) * time.Second,
			LookupTimeout:   time.Duration(lookupTimeout) * time.Second,
			UploadPolicy:    uploadPolicy,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
