package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPStoreSave(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewOTPStore(rdb)

	mock.ExpectSet("otp:dina@example.com:123456", "1", 5*time.Minute).SetVal("OK")

	require.NoError(t, store.Save(context.Background(), "dina@example.com", "123456", 5*time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOTPStoreConsume(t *testing.T) {
	t.Run("live code consumes once", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		store := NewOTPStore(rdb)

		mock.ExpectGetDel("otp:dina@example.com:123456").SetVal("1")

		ok, err := store.Consume(context.Background(), "dina@example.com", "123456")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing or expired code is a plain miss", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		store := NewOTPStore(rdb)

		mock.ExpectGetDel("otp:dina@example.com:123456").RedisNil()

		ok, err := store.Consume(context.Background(), "dina@example.com", "123456")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("transport errors surface", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		store := NewOTPStore(rdb)

		mock.ExpectGetDel("otp:dina@example.com:123456").SetErr(errors.New("conn reset"))

		ok, err := store.Consume(context.Background(), "dina@example.com", "123456")
		assert.Error(t, err)
		assert.False(t, ok)
	})
}
