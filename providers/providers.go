package providers

import (
	"context"
	"inventory/models"
	"net/http"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type AuthMiddlewareService interface {
	SessionMiddleware() func(http.Handler) http.Handler
	GetSessionFromContext(r *http.Request) (models.Session, error)
}

type ConfigProvider interface {
	LoadEnv() error
	IsProduction() bool
	GetServerPort() string
	GetDatabaseString() string
	GetStoreDriver() string
	GetStorePath() string
	GetSQLiteDSN() string
	GetRedisAddr() string
	GetAllowedDomain() string
	GetSecretKey() string
	GetSessionTTL() time.Duration
	GetSheetName() string
	GetSheetsEndpoint() string
	GetSheetsRetryMax() int
	GetFirebaseCredentials() string
	ShouldSeedSampleData() bool
}

type DBProvider interface {
	DB() *sqlx.DB
	Close() error
}

type RedisProvider interface {
	Client() *redis.Client
	Ping(ctx context.Context) error
	Close() error
}

type ZapLoggerProvider interface {
	InitLogger()
	SyncLogger()
	GetLogger() *zap.Logger
}

type FirebaseProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
	GetUserByUID(ctx context.Context, uid string) (*firebaseauth.UserRecord, error)
}

// KVStore is the durable local mirror. Every value is a whole document that is
// replaced on write; Get returns models.ErrKeyNotFound for absent keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
