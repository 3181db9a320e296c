package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_MissingPorts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Ports)
		wantErr error
	}{
		{"registry", func(p *Ports) { p.Registry = nil }, ErrMissingRegistry},
		{"classifier", func(p *Ports) { p.Classifier = nil }, ErrMissingClassifier},
		{"orders", func(p *Ports) { p.Orders = nil }, ErrMissingOrderQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ports := testPorts()
			tt.mutate(ports)
			server, err := NewServer(ports, ":0")
			assert.Nil(t, server)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestServer_StartStop(t *testing.T) {
	server, err := NewServer(testPorts(), "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, server.Start())

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://"+server.Addr()+"/healthz", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Stop())
	require.NoError(t, server.Stop())
	client.CloseIdleConnections()
}

func TestServer_Run(t *testing.T) {
	server, err := NewServer(testPorts(), "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	require.Eventually(t, func() bool { return server.Addr() != "127.0.0.1:0" }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_StartPortInUse(t *testing.T) {
	first, err := NewServer(testPorts(), "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, first.Start())
	defer first.Stop()

	second, err := NewServer(testPorts(), first.Addr())
	require.NoError(t, err)
	assert.Error(t, second.Start())
}
