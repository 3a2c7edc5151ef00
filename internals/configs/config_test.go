package configs

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("DB_DRIVER", "")
	t.Setenv("UPLOAD_DRIVER", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected default driver postgres, got %q", cfg.DBDriver)
	}
	if cfg.UploadMaxBytes != 2<<20 {
		t.Fatalf("expected default upload limit 2MiB, got %d", cfg.UploadMaxBytes)
	}
	if cfg.Location().String() != "Asia/Jakarta" {
		t.Fatalf("expected Asia/Jakarta, got %s", cfg.Location())
	}
	if cfg.IsProduction() {
		t.Fatal("default env should not be production")
	}
}

func TestLoadConfig_ReadsEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("UPLOAD_DRIVER", "local")
	t.Setenv("MIDTRANS_USE_PROD", "true")
	t.Setenv("JWT_TTL_HOURS", "12")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected sqlite, got %q", cfg.DBDriver)
	}
	if !cfg.MidtransUseProd {
		t.Fatal("expected MIDTRANS_USE_PROD=true")
	}
	if cfg.JWTTTLHours != 12 {
		t.Fatalf("expected ttl 12, got %d", cfg.JWTTTLHours)
	}
	if !cfg.IsProduction() {
		t.Fatal("expected production")
	}
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("UPLOAD_DRIVER", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown DB_DRIVER")
	}
}
