// Package server provides HTTP server for the application.
// This file contains unit tests for the server package.
package server

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/verustcode/internal/config"
	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/internal/intake"
	"github.com/verustcode/verustcode/internal/queue"
	"github.com/verustcode/verustcode/internal/store"
	"github.com/verustcode/verustcode/pkg/logger"
)

func init() {
	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
	})
}

func noopResolver(name string) (provider.Provider, error) {
	return nil, errors.New("provider not configured: " + name)
}

func newTestIntake(t *testing.T) (*intake.Service, store.Store) {
	t.Helper()
	s, cleanupStore := store.SetupTestDB(t)
	t.Cleanup(cleanupStore)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := queue.New(client, "test-server")
	return intake.NewService(s, q), s
}

func TestServer_New(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
	}
	in, testStore := newTestIntake(t)

	srv := New(cfg, testStore, in, noopResolver)
	require.NotNil(t, srv)
	assert.Equal(t, cfg, srv.cfg)
	assert.Equal(t, testStore, srv.store)
	assert.NotNil(t, srv.router)
}

func TestServer_SetupRoutes(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
	}
	in, testStore := newTestIntake(t)

	srv := New(cfg, testStore, in, noopResolver)
	srv.SetupRoutes()

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}

func TestServer_Start(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 0, // automatic port assignment
		},
	}
	in, testStore := newTestIntake(t)

	srv := New(cfg, testStore, in, noopResolver)
	srv.SetupRoutes()

	err := srv.Start()
	require.NoError(t, err)
	assert.NotNil(t, srv.httpServer)

	err = srv.Stop()
	require.NoError(t, err)
}

func TestServer_Stop(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 0,
		},
	}
	in, testStore := newTestIntake(t)

	srv := New(cfg, testStore, in, noopResolver)
	srv.SetupRoutes()

	// Stop without starting should not error
	err := srv.Stop()
	require.NoError(t, err)

	err = srv.Start()
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	err = srv.Stop()
	require.NoError(t, err)
}

func TestServer_Stop_WithTimeout(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 0,
		},
	}
	in, testStore := newTestIntake(t)

	srv := New(cfg, testStore, in, noopResolver)
	srv.SetupRoutes()

	err := srv.Start()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error)
	go func() {
		done <- srv.Stop()
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("Stop() timed out")
	}
}

func TestServer_Router(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
	}
	in, testStore := newTestIntake(t)

	srv := New(cfg, testStore, in, noopResolver)
	r := srv.Router()

	assert.NotNil(t, r)
	assert.Equal(t, srv.router, r)
}

func TestServer_Address(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.ServerConfig
		expected string
	}{
		{
			name:     "default port",
			cfg:      config.ServerConfig{Host: "localhost", Port: 8080},
			expected: "localhost:8080",
		},
		{
			name:     "custom host and port",
			cfg:      config.ServerConfig{Host: "0.0.0.0", Port: 3000},
			expected: "0.0.0.0:3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address := tt.cfg.Address()
			assert.Equal(t, tt.expected, address)
		})
	}
}

func TestServer_DebugMode(t *testing.T) {
	tests := []struct {
		name     string
		debug    bool
		expected string
	}{
		{name: "debug mode enabled", debug: true, expected: gin.DebugMode},
		{name: "debug mode disabled", debug: false, expected: gin.ReleaseMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Server: config.ServerConfig{
					Host:  "localhost",
					Port:  8080,
					Debug: tt.debug,
				},
			}
			in, testStore := newTestIntake(t)

			_ = New(cfg, testStore, in, noopResolver)
			assert.Equal(t, tt.expected, gin.Mode())
		})
	}
}

func TestServer_HTTPTimeouts(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 0,
		},
	}
	in, testStore := newTestIntake(t)

	srv := New(cfg, testStore, in, noopResolver)
	srv.SetupRoutes()

	err := srv.Start()
	require.NoError(t, err)
	defer srv.Stop()

	assert.Equal(t, defaultReadTimeout, srv.httpServer.ReadTimeout)
	assert.Equal(t, defaultWriteTimeout, srv.httpServer.WriteTimeout)
	assert.Equal(t, defaultIdleTimeout, srv.httpServer.IdleTimeout)
}

func TestServer_RouterConfiguration(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
	}
	in, testStore := newTestIntake(t)

	srv := New(cfg, testStore, in, noopResolver)

	assert.False(t, srv.router.RedirectTrailingSlash)
	assert.False(t, srv.router.RedirectFixedPath)
}
