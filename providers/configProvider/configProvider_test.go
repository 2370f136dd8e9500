package configprovider

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg := NewConfigProvider(viper.New())
	require.NoError(t, cfg.LoadEnv())

	assert.Equal(t, "8080", cfg.GetServerPort())
	assert.Equal(t, StoreDriverFile, cfg.GetStoreDriver())
	assert.Equal(t, "@sed.sc.gov.br", cfg.GetAllowedDomain())
	assert.Equal(t, 24*time.Hour, cfg.GetSessionTTL())
	assert.Equal(t, "Inventário", cfg.GetSheetName())
	assert.Equal(t, 3, cfg.GetSheetsRetryMax())
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.ShouldSeedSampleData())
}

func TestLoadEnvOverrides(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *EnvConfigProvider)
	}{
		{
			name: "environment wins over defaults",
			env: map[string]string{
				"SERVER_PORT":      "9000",
				"STORE_DRIVER":     "SQLite",
				"SESSION_TTL":      "2h",
				"SHEETS_ENDPOINT":  "http://localhost:1234/",
				"SEED_SAMPLE_DATA": "true",
			},
			check: func(t *testing.T, cfg *EnvConfigProvider) {
				assert.Equal(t, "9000", cfg.GetServerPort())
				assert.Equal(t, StoreDriverSQLite, cfg.GetStoreDriver())
				assert.Equal(t, 2*time.Hour, cfg.GetSessionTTL())
				assert.Equal(t, "http://localhost:1234", cfg.GetSheetsEndpoint())
				assert.True(t, cfg.ShouldSeedSampleData())
			},
		},
		{
			name: "database string",
			env: map[string]string{
				"DB_USER":     "cee",
				"DB_PASSWORD": "secret",
				"DB_HOST":     "db",
				"DB_PORT":     "5433",
				"DB_NAME":     "inventory",
			},
			check: func(t *testing.T, cfg *EnvConfigProvider) {
				assert.Equal(t, "user=cee password=secret host=db port=5433 dbname=inventory sslmode=disable", cfg.GetDatabaseString())
			},
		},
		{
			name:    "unknown store driver",
			env:     map[string]string{"STORE_DRIVER": "mongo"},
			wantErr: true,
		},
		{
			name:    "production requires a secret",
			env:     map[string]string{"APP_ENV": "production", "SECRET_KEY": ""},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg := &EnvConfigProvider{v: viper.New()}
			err := cfg.LoadEnv()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}
