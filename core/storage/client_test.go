package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_StripsScheme(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{name: "plain endpoint", endpoint: "localhost:9000"},
		{name: "http scheme", endpoint: "http://localhost:9000"},
		{name: "https scheme", endpoint: "https://localhost:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(Config{
				Endpoint:  tt.endpoint,
				AccessKey: "key",
				SecretKey: "secret",
			})
			// Client creation is lazy; no connection is attempted yet.
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestNewClient_InvalidEndpoint(t *testing.T) {
	client, err := NewClient(Config{Endpoint: "http://"})
	assert.Error(t, err)
	assert.Nil(t, client)
}
