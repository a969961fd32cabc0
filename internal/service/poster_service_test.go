package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/promura/backend/configs"
)

func posterWithCommand(t *testing.T, command string) PosterService {
	t.Helper()
	cfg := testConfig(t)
	cfg.Snarf.Command = command
	return NewPosterService(cfg)
}

func TestPosterSuccess(t *testing.T) {
	poster := posterWithCommand(t, "true")

	result := poster.Post(context.Background(), "hello", nil, "")
	require.True(t, result.Success)
	assert.Equal(t, "Successfully posted", result.Message)
}

func TestPosterFailureNeverReturnsError(t *testing.T) {
	poster := posterWithCommand(t, "false")

	result := poster.Post(context.Background(), "hello", nil, "")
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "poster failed")
}

func TestPosterMissingCommand(t *testing.T) {
	poster := posterWithCommand(t, "/nonexistent/snarf-binary")

	result := poster.Post(context.Background(), "hello", nil, "")
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

func TestTestConnectionRequiresUsername(t *testing.T) {
	cfg := testConfig(t)
	cfg.Snarf.Username = ""
	poster := NewPosterService(cfg)

	result := poster.TestConnection(context.Background())
	assert.False(t, result.Success)
	assert.Equal(t, "no poster account configured", result.Message)
}

func TestTestConnectionSuccess(t *testing.T) {
	cfg := config.Config{
		Snarf: config.Snarf{Command: "true", Username: "tester", Browser: "chrome"},
	}
	poster := NewPosterService(cfg)

	result := poster.TestConnection(context.Background())
	require.True(t, result.Success)
	assert.Equal(t, "connected as tester", result.Message)
}
