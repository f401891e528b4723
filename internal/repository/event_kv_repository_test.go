package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventKVRepositoryKeys(t *testing.T) {
	repo := NewEventKVRepository(nil, "", nil)
	assert.Equal(t, "eventcal:events:data", repo.dataKey)
	assert.Equal(t, "eventcal:events:order", repo.orderKey)

	repo = NewEventKVRepository(nil, "staging", nil)
	assert.Equal(t, "staging:events:data", repo.dataKey)
	assert.NoError(t, repo.Close())
}

func TestEventKVRepositoryWrapsConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	repo := NewEventKVRepository(client, "test", nil)
	defer repo.Close() //nolint:errcheck

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis lrange test:events:order")

	_, err = repo.GetByID(context.Background(), "e1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis hget e1")
}
