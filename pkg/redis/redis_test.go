package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrpoint/giftcert-bot/pkg/config"
)

func TestNewClient_UnreachableServer(t *testing.T) {
	client, err := NewClient(&config.RedisConfig{
		Addr: "127.0.0.1:1",
	})

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "unable to connect to redis")
}
