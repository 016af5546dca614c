/*
Package config loads the server configuration from the environment.

SOURCES (later wins):
  1. Defaults below
  2. A .env file in the working directory, if present
  3. Process environment
  4. Command-line flags (applied by cmd/server)

KEYS:
  PORT             HTTP port (8080)
  STORE_DRIVER     sqlite | xlsx | memory (sqlite)
  SQLITE_PATH      SQLite database file (leaves.db)
  XLSX_PATH        Workbook file (leaves.xlsx)
  XLSX_RELOAD      How often to look for external workbook edits (30s, 0 = never)
  LEAVE_TABLE      Leave table / worksheet name (DangKyNghi)
  DIRECTORY_TABLE  Staff table / worksheet name (NhanVien)
  JWT_SECRET       Token signing key (required outside the memory driver)
  TOKEN_TTL        Session token lifetime (12h)
  REDIS_ADDR       Redis address for the shared lock; empty = in-process lock
  LOCK_TTL         Redis lock expiry (10s)
  LOG_LEVEL        debug | info | warn | error (info)
  DEFAULT_LOCALE   vi | en (vi)
  CORS_ORIGINS     Comma separated allowed origins (*)
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           int           `validate:"min=1,max=65535"`
	StoreDriver    string        `validate:"oneof=sqlite xlsx memory"`
	SQLitePath     string        `validate:"required_if=StoreDriver sqlite"`
	XLSXPath       string        `validate:"required_if=StoreDriver xlsx"`
	XLSXReload     time.Duration `validate:"gte=0"`
	LeaveTable     string        `validate:"required"`
	DirectoryTable string        `validate:"required,nefield=LeaveTable"`
	JWTSecret      string        `validate:"required_unless=StoreDriver memory"`
	TokenTTL       time.Duration `validate:"gt=0"`
	RedisAddr      string        `validate:"omitempty,hostname_port"`
	LockTTL        time.Duration `validate:"gt=0"`
	LogLevel       string        `validate:"oneof=debug info warn error"`
	DefaultLocale  string        `validate:"oneof=vi en"`
	CORSOrigins    []string
}

// Load reads the optional env files (".env" if none are given) and the
// environment. It does not validate; call Validate after applying flags.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
			}
		}
	}

	port, err := getInt("PORT", 8080)
	if err != nil {
		return Config{}, err
	}
	tokenTTL, err := getDuration("TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return Config{}, err
	}
	lockTTL, err := getDuration("LOCK_TTL", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	xlsxReload, err := getDuration("XLSX_RELOAD", 30*time.Second)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Port:           port,
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
		SQLitePath:     getEnv("SQLITE_PATH", "leaves.db"),
		XLSXPath:       getEnv("XLSX_PATH", "leaves.xlsx"),
		XLSXReload:     xlsxReload,
		LeaveTable:     getEnv("LEAVE_TABLE", "DangKyNghi"),
		DirectoryTable: getEnv("DIRECTORY_TABLE", "NhanVien"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       tokenTTL,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		LockTTL:        lockTTL,
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DefaultLocale:  strings.ToLower(getEnv("DEFAULT_LOCALE", "vi")),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
	}, nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
