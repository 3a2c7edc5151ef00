package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"soalku_backend/internals/configs"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDB membuka koneksi sesuai DB_DRIVER lalu menjalankan migrasi.
func ConnectDB(cfg *configs.Config) {
	log.Printf("🔌 Koneksi ke database (%s)...", cfg.DBDriver)

	var dsn string
	switch cfg.DBDriver {
	case "sqlite":
		dsn = SQLiteDSN(cfg.DBDSN)
	default:
		// Kalau pakai PgBouncer, arahkan host/port ke PgBouncer dan biarkan PreferSimpleProtocol=true
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=soalku&options=-c statement_timeout=3000",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode,
		)
	}

	db, err := Open(cfg.DBDriver, dsn, cfg.IsProduction())
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatalf("❌ Gagal migrasi DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

// Open membuka *gorm.DB. TranslateError aktif supaya pelanggaran unique/FK
// keluar sebagai gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
func Open(driver, dsn string, production bool) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         configs.NewGormLogger(production),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	switch driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite: satu writer; in-memory juga butuh koneksi tunggal yang tidak pernah ditutup
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		return db, nil
	case "postgres":
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true, // 👍 cocok untuk PgBouncer (transaction pooling)
		}), gcfg)
	default:
		return nil, fmt.Errorf("driver tidak dikenal: %s", driver)
	}
}

// SQLiteDSN memastikan foreign key aktif.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "foreign_keys") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func TunePool(driver string) {
	if driver != "postgres" {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	// ⚖️ Sesuaikan dengan limit Supabase/PgBouncer
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond) // beri waktu server naik
		if err := Ping(DB); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func Ping(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("db belum diinisialisasi")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
