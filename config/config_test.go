package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "<autodiscover>", c.WeightsPath)
	require.Equal(t, "onnx", c.Backend)
}

func TestLoadFlagOverridesDefault(t *testing.T) {
	c, err := Load([]string{"--backend", "http", "--weights", "/tmp/net.pb"})
	require.NoError(t, err)
	require.Equal(t, "http", c.Backend)
	require.Equal(t, "/tmp/net.pb", c.WeightsPath)
}
