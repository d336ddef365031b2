package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("missing document registry returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingDocumentRegistry)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(newTestPorts(t))
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	full := newTestPorts(t)

	t.Run("missing run tracker returns error", func(t *testing.T) {
		ports := &Ports{Documents: full.Documents}
		assert.ErrorIs(t, ports.Validate(), ErrMissingRunTracker)
	})

	t.Run("required ports only is valid", func(t *testing.T) {
		ports := &Ports{Documents: full.Documents, Runs: full.Runs}
		assert.NoError(t, ports.Validate())

		_, err := NewServer(ports)
		assert.NoError(t, err)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		assert.NoError(t, full.Validate())
	})
}

func TestServer_Session(t *testing.T) {
	ctx := context.Background()

	full := newTestPorts(t)
	server, err := NewServer(&Ports{Documents: full.Documents, Runs: full.Runs})
	require.NoError(t, err)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-worker", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	assert.Contains(t, cs.InitializeResult().Instructions, "idempotency key")

	res, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "start_run")
	assert.Contains(t, names, "register_document")
	assert.NotContains(t, names, "search_documents")
}
