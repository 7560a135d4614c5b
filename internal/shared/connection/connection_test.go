package connection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestOpenSQLite(t *testing.T) {
	db, err := OpenSQLite("file:connection_test?mode=memory&cache=shared")
	assert.NoError(t, err)

	sqlDB, err := db.DB()
	assert.NoError(t, err)
	defer sqlDB.Close()

	assert.NoError(t, sqlDB.Ping())
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestConnectKafkaWithRetry_Unreachable(t *testing.T) {
	retryDelay = time.Millisecond
	defer func() { retryDelay = 5 * time.Second }()

	w, err := ConnectKafkaWithRetry("127.0.0.1:1", 2, zap.NewNop())

	assert.Nil(t, w)
	assert.ErrorContains(t, err, "after 2 retries")
}
