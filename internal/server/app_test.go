package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/contestclient/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestNewApp(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.LogFormat = "text"

	app, err := NewApp(c)
	require.NoError(t, err)
	assert.NotNil(t, app.api)

	c.LogFormat = "xml"
	_, err = NewApp(c)
	require.Error(t, err)
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddr = freeAddr(t)
	c.LogFormat = "json"
	c.SecretKey = "test"

	app, err := NewApp(c)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	url := fmt.Sprintf("http://%s/general/problems", c.EndpointAddr)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddr = l.Addr().String()
	c.LogFormat = "text"

	app, err := NewApp(c)
	require.NoError(t, err)

	require.Error(t, app.Run(context.Background()))
}
