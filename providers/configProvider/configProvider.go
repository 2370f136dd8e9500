package configprovider

import (
	"fmt"
	"inventory/providers"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

type EnvConfigProvider struct {
	v *viper.Viper
}

// NewConfigProvider reads settings from v. A nil v gets a fresh viper instance,
// callers that bind cobra flags pass their own.
func NewConfigProvider(v *viper.Viper) providers.ConfigProvider {
	if v == nil {
		v = viper.New()
	}
	return &EnvConfigProvider{v: v}
}

func (e *EnvConfigProvider) LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not loaded, using system envs")
	}

	e.v.AutomaticEnv()
	e.v.SetDefault("SERVER_PORT", "8080")
	e.v.SetDefault("APP_ENV", "development")
	e.v.SetDefault("STORE_DRIVER", StoreDriverFile)
	e.v.SetDefault("STORE_PATH", "data")
	e.v.SetDefault("DB_HOST", "localhost")
	e.v.SetDefault("DB_PORT", "5432")
	e.v.SetDefault("SQLITE_DSN", "inventory.db")
	e.v.SetDefault("REDIS_ADDR", "localhost:6379")
	e.v.SetDefault("ALLOWED_DOMAIN", "@sed.sc.gov.br")
	e.v.SetDefault("SESSION_TTL", 24*time.Hour)
	e.v.SetDefault("SHEET_NAME", "Inventário")
	e.v.SetDefault("SHEETS_ENDPOINT", "https://sheets.googleapis.com")
	e.v.SetDefault("SHEETS_RETRY_MAX", 3)
	e.v.SetDefault("SEED_SAMPLE_DATA", false)

	switch e.GetStoreDriver() {
	case StoreDriverFile, StoreDriverPostgres, StoreDriverSQLite, StoreDriverRedis, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", e.GetStoreDriver())
	}
	if e.IsProduction() && e.GetSecretKey() == "" {
		return fmt.Errorf("SECRET_KEY is required in production")
	}
	return nil
}

func (e *EnvConfigProvider) IsProduction() bool {
	return strings.EqualFold(e.v.GetString("APP_ENV"), "production")
}

func (e *EnvConfigProvider) GetServerPort() string {
	return e.v.GetString("SERVER_PORT")
}

func (e *EnvConfigProvider) GetDatabaseString() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		e.v.GetString("DB_USER"), e.v.GetString("DB_PASSWORD"), e.v.GetString("DB_HOST"),
		e.v.GetString("DB_PORT"), e.v.GetString("DB_NAME"))
}

func (e *EnvConfigProvider) GetStoreDriver() string {
	return strings.ToLower(e.v.GetString("STORE_DRIVER"))
}

func (e *EnvConfigProvider) GetStorePath() string {
	return e.v.GetString("STORE_PATH")
}

func (e *EnvConfigProvider) GetSQLiteDSN() string {
	return e.v.GetString("SQLITE_DSN")
}

func (e *EnvConfigProvider) GetRedisAddr() string {
	return e.v.GetString("REDIS_ADDR")
}

func (e *EnvConfigProvider) GetAllowedDomain() string {
	return e.v.GetString("ALLOWED_DOMAIN")
}

func (e *EnvConfigProvider) GetSecretKey() string {
	return e.v.GetString("SECRET_KEY")
}

func (e *EnvConfigProvider) GetSessionTTL() time.Duration {
	return e.v.GetDuration("SESSION_TTL")
}

func (e *EnvConfigProvider) GetSheetName() string {
	return e.v.GetString("SHEET_NAME")
}

func (e *EnvConfigProvider) GetSheetsEndpoint() string {
	return strings.TrimRight(e.v.GetString("SHEETS_ENDPOINT"), "/")
}

func (e *EnvConfigProvider) GetSheetsRetryMax() int {
	return e.v.GetInt("SHEETS_RETRY_MAX")
}

func (e *EnvConfigProvider) GetFirebaseCredentials() string {
	return e.v.GetString("FIREBASE_CREDENTIALS")
}

func (e *EnvConfigProvider) ShouldSeedSampleData() bool {
	return e.v.GetBool("SEED_SAMPLE_DATA")
}
