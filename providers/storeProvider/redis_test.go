package storeprovider

import (
	"context"
	"errors"
	"inventory/models"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewRedisStore(client)

		mock.ExpectGet("inventarioCEE").SetVal(`[]`)
		mock.ExpectGet("ceeUsers").RedisNil()
		mock.ExpectGet("googleSheetsConfig").SetErr(errors.New("timeout"))

		got, err := store.Get(ctx, "inventarioCEE")
		require.NoError(t, err)
		assert.Equal(t, "[]", string(got))

		_, err = store.Get(ctx, "ceeUsers")
		assert.ErrorIs(t, err, models.ErrKeyNotFound)

		_, err = store.Get(ctx, "googleSheetsConfig")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrKeyNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("set and delete", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		store := NewRedisStore(client)

		mock.ExpectSet("inventarioCEE", []byte(`[]`), 0).SetVal("OK")
		mock.ExpectDel("ceeAuthSession:abc").SetVal(1)
		mock.ExpectSet("ceeUsers", []byte(`[]`), 0).SetErr(redis.ErrClosed)

		require.NoError(t, store.Set(ctx, "inventarioCEE", []byte(`[]`)))
		require.NoError(t, store.Delete(ctx, "ceeAuthSession:abc"))
		assert.Error(t, store.Set(ctx, "ceeUsers", []byte(`[]`)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
