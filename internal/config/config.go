package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MigrationsPath  string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// StoreConfig selects the key-value backend. Backend is either "leveldb"
// (default) or "postgres".
type StoreConfig struct {
	Backend     string
	LevelDBPath string
	Postgres    PostgresConfig
}

type WalletConfig struct {
	RPCURL   string
	Name     string
	Password string
}

type ContactsConfig struct {
	DirectoryURL string
}

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Wallet   WalletConfig
	Contacts ContactsConfig
}

// Load reads configuration from the environment, optionally preloading a
// .env file. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
		}
	}

	cfg := &Config{}

	cfg.App.Port = getEnv("APP_PORT", "8090")

	cfg.Store.Backend = getEnv("STORE_BACKEND", "leveldb")
	switch cfg.Store.Backend {
	case "leveldb":
		cfg.Store.LevelDBPath = getEnv("LEVELDB_PATH", "data/orders")
	case "postgres":
		pg := &cfg.Store.Postgres
		pg.Host = os.Getenv("DB_HOST")
		pg.Port = getEnv("DB_PORT", "5432")
		pg.User = os.Getenv("DB_USER")
		pg.Password = os.Getenv("DB_PASSWORD")
		pg.DBName = os.Getenv("DB_NAME")
		pg.SSLMode = getEnv("DB_SSLMODE", "disable")
		pg.MigrationsPath = getEnv("DB_MIGRATIONS_PATH", "migrations")
		pg.MaxConns = 10
		pg.MinConns = 2
		pg.MaxConnLifetime = time.Hour
		for name, v := range map[string]string{
			"DB_HOST":     pg.Host,
			"DB_USER":     pg.User,
			"DB_PASSWORD": pg.Password,
			"DB_NAME":     pg.DBName,
		} {
			if v == "" {
				return nil, fmt.Errorf("config: %s is required for the postgres backend", name)
			}
		}
	default:
		return nil, fmt.Errorf("config: unknown store backend %q", cfg.Store.Backend)
	}

	cfg.Wallet.RPCURL = os.Getenv("WALLET_RPC_URL")
	if cfg.Wallet.RPCURL == "" {
		return nil, fmt.Errorf("config: WALLET_RPC_URL is required")
	}
	cfg.Wallet.Name = getEnv("WALLET_NAME", "marketplace")
	cfg.Wallet.Password = getEnv("WALLET_PASSWORD", "password")

	cfg.Contacts.DirectoryURL = os.Getenv("CONTACT_DIRECTORY_URL")
	if cfg.Contacts.DirectoryURL == "" {
		return nil, fmt.Errorf("config: CONTACT_DIRECTORY_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
