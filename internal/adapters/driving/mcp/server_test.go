package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil dispatcher returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{}, "test")
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingDispatcher)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Dispatcher: &mockDispatcher{tools: testTools()}}, "test")
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("no tools still creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Dispatcher: &mockDispatcher{}}, "test")
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil ports", func(t *testing.T) {
		var ports *Ports
		assert.ErrorIs(t, ports.Validate(), ErrMissingDispatcher)
	})

	t.Run("nil dispatcher", func(t *testing.T) {
		assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingDispatcher)
	})

	t.Run("dispatcher set", func(t *testing.T) {
		assert.NoError(t, (&Ports{Dispatcher: &mockDispatcher{}}).Validate())
	})
}
