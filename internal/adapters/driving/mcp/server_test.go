package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("missing ports returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{}, "1.0.0")
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRegistry)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(testPorts(&mockOrderQuery{}), "")
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestServer_Handler(t *testing.T) {
	server, err := NewServer(testPorts(&mockOrderQuery{}), "1.2.3")
	require.NoError(t, err)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{` +
		`"protocolVersion":"2025-06-18","capabilities":{},` +
		`"clientInfo":{"name":"test","version":"0"}}}`
	req := httptest.NewRequestWithContext(context.Background(), http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"infoflex-bridge"`)
	assert.Contains(t, rec.Body.String(), `"1.2.3"`)
}

func TestPorts_Validate(t *testing.T) {
	full := testPorts(&mockOrderQuery{})

	tests := []struct {
		name    string
		mutate  func(p *Ports)
		wantErr error
	}{
		{name: "all ports is valid", mutate: func(*Ports) {}},
		{name: "no registry", mutate: func(p *Ports) { p.Registry = nil }, wantErr: ErrMissingRegistry},
		{name: "no classifier", mutate: func(p *Ports) { p.Classifier = nil }, wantErr: ErrMissingClassifier},
		{name: "no order query", mutate: func(p *Ports) { p.Orders = nil }, wantErr: ErrMissingOrderQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := *full
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
