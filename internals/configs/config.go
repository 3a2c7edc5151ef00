package configs

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	JWTSecret      string
	GoogleClientID string

	// App berisi konfigurasi lengkap hasil LoadEnv.
	App *Config
)

type Config struct {
	AppEnv      string `mapstructure:"APP_ENV"`
	Port        string `mapstructure:"PORT"`
	AppTimezone string `mapstructure:"APP_TIMEZONE"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	DBDSN      string `mapstructure:"DB_DSN"`

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	JWTTTLHours    int    `mapstructure:"JWT_TTL_HOURS"`
	GoogleClientID string `mapstructure:"GOOGLE_CLIENT_ID"`

	MidtransServerKey       string `mapstructure:"MIDTRANS_SERVER_KEY"`
	MidtransUseProd         bool   `mapstructure:"MIDTRANS_USE_PROD"`
	MidtransBypassSignature string `mapstructure:"MIDTRANS_BYPASS_SIGNATURE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	AMQPURL string `mapstructure:"AMQP_URL"`

	UploadDriver        string `mapstructure:"UPLOAD_DRIVER"`
	UploadDir           string `mapstructure:"UPLOAD_DIR"`
	UploadMaxBytes      int64  `mapstructure:"UPLOAD_MAX_BYTES"`
	UploadPublicBaseURL string `mapstructure:"UPLOAD_PUBLIC_BASE_URL"`
	UploadConvertWebP   bool   `mapstructure:"UPLOAD_CONVERT_WEBP"`

	OSSEndpoint        string `mapstructure:"OSS_ENDPOINT"`
	OSSAccessKeyID     string `mapstructure:"OSS_ACCESS_KEY_ID"`
	OSSAccessKeySecret string `mapstructure:"OSS_ACCESS_KEY_SECRET"`
	OSSBucket          string `mapstructure:"OSS_BUCKET"`
	OSSPublicBase      string `mapstructure:"OSS_PUBLIC_BASE"`

	SubscriptionExpirySchedule string `mapstructure:"SUBSCRIPTION_EXPIRY_SCHEDULE"`
	BlacklistCleanupSchedule   string `mapstructure:"BLACKLIST_CLEANUP_SCHEDULE"`
	TokenBlacklistTTLDays      int    `mapstructure:"TOKEN_BLACKLIST_TTL_DAYS"`

	SeedOnStart bool   `mapstructure:"SEED_ON_START"`
	SeedDir     string `mapstructure:"SEED_DIR"`
}

var configKeys = []string{
	"APP_ENV", "PORT", "APP_TIMEZONE",
	"DB_DRIVER", "DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME", "DB_SSLMODE", "DB_DSN",
	"JWT_SECRET", "JWT_TTL_HOURS", "GOOGLE_CLIENT_ID",
	"MIDTRANS_SERVER_KEY", "MIDTRANS_USE_PROD", "MIDTRANS_BYPASS_SIGNATURE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM",
	"AMQP_URL",
	"UPLOAD_DRIVER", "UPLOAD_DIR", "UPLOAD_MAX_BYTES", "UPLOAD_PUBLIC_BASE_URL", "UPLOAD_CONVERT_WEBP",
	"OSS_ENDPOINT", "OSS_ACCESS_KEY_ID", "OSS_ACCESS_KEY_SECRET", "OSS_BUCKET", "OSS_PUBLIC_BASE",
	"SUBSCRIPTION_EXPIRY_SCHEDULE", "BLACKLIST_CLEANUP_SCHEDULE", "TOKEN_BLACKLIST_TTL_DAYS",
	"SEED_ON_START", "SEED_DIR",
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() *Config {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("❌ Konfigurasi tidak valid: %v", err)
	}

	App = cfg
	JWTSecret = cfg.JWTSecret
	GoogleClientID = cfg.GoogleClientID

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	} else {
		log.Println("✅ JWT_SECRET berhasil dimuat.")
	}
	if GoogleClientID == "" {
		log.Println("❌ GOOGLE_CLIENT_ID belum diset!")
	}
	if cfg.MidtransServerKey == "" {
		log.Println("❌ MIDTRANS_SERVER_KEY belum diset!")
	}
	return cfg
}

// LoadConfig membaca konfigurasi dari environment lewat viper.
func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("APP_TIMEZONE", "Asia/Jakarta")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_SSLMODE", "require")
	viper.SetDefault("DB_DSN", "soalku.db")
	viper.SetDefault("JWT_TTL_HOURS", 24)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("UPLOAD_DRIVER", "local")
	viper.SetDefault("UPLOAD_DIR", "./uploads")
	viper.SetDefault("UPLOAD_MAX_BYTES", 2<<20)
	viper.SetDefault("UPLOAD_PUBLIC_BASE_URL", "/uploads")
	viper.SetDefault("SUBSCRIPTION_EXPIRY_SCHEDULE", "5 0 * * *") // 00:05 setiap hari
	viper.SetDefault("BLACKLIST_CLEANUP_SCHEDULE", "0 3 * * *")   // 03:00 setiap hari
	viper.SetDefault("TOKEN_BLACKLIST_TTL_DAYS", 7)
	viper.SetDefault("SEED_DIR", "internals/seeds")
	viper.AutomaticEnv()

	for _, k := range configKeys {
		_ = viper.BindEnv(k)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("DB_DRIVER tidak dikenal: %q", cfg.DBDriver)
	}

	cfg.UploadDriver = strings.ToLower(strings.TrimSpace(cfg.UploadDriver))
	switch cfg.UploadDriver {
	case "local", "oss":
	default:
		return nil, fmt.Errorf("UPLOAD_DRIVER tidak dikenal: %q", cfg.UploadDriver)
	}

	if _, err := time.LoadLocation(cfg.AppTimezone); err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE tidak valid: %w", err)
	}
	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES harus > 0")
	}
	return &cfg, nil
}

// IsProduction true kalau APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

// Location zona waktu aplikasi; fallback UTC.
func (c *Config) Location() *time.Location {
	if c == nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
