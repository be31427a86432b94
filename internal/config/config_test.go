package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2pmarket/order-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WALLET_RPC_URL", "http://localhost:18083/json_rpc")
	t.Setenv("CONTACT_DIRECTORY_URL", "http://localhost:9045")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.App.Port)
	assert.Equal(t, "leveldb", cfg.Store.Backend)
	assert.Equal(t, "data/orders", cfg.Store.LevelDBPath)
	assert.Equal(t, "marketplace", cfg.Wallet.Name)
	assert.Equal(t, "password", cfg.Wallet.Password)
}

func TestLoad_MissingWalletURL(t *testing.T) {
	t.Setenv("WALLET_RPC_URL", "")
	t.Setenv("CONTACT_DIRECTORY_URL", "http://localhost:9045")

	_, err := config.Load("")
	assert.Error(t, err)
}

func TestLoad_PostgresBackendRequiresCredentials(t *testing.T) {
	t.Setenv("WALLET_RPC_URL", "http://localhost:18083/json_rpc")
	t.Setenv("CONTACT_DIRECTORY_URL", "http://localhost:9045")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "orders")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_NAME", "orders")

	_, err := config.Load("")
	assert.Error(t, err)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("WALLET_RPC_URL", "http://localhost:18083/json_rpc")
	t.Setenv("CONTACT_DIRECTORY_URL", "http://localhost:9045")
	t.Setenv("STORE_BACKEND", "cassandra")

	_, err := config.Load("")
	assert.Error(t, err)
}
