package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptionTableAdvertisesKnownOptions(t *testing.T) {
	r := NewRegistry()
	DefaultOptionTable(r)

	schemas := r.Advertise()
	require.NotEmpty(t, schemas)

	v, ok := r.Get("cpuct")
	require.True(t, ok)
	require.Equal(t, "3.4", v)

	threads, ok := r.GetInt("threads")
	require.True(t, ok)
	require.Equal(t, 2, threads)
}

func TestSetRejectsOutOfRangeValue(t *testing.T) {
	r := NewRegistry()
	DefaultOptionTable(r)

	err := r.Set("threads", "500")
	require.Error(t, err)

	threads, _ := r.GetInt("threads")
	require.Equal(t, 2, threads, "rejected set must not change the stored value")
}

func TestSetRejectsUnknownOption(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Set("does-not-exist", "1"))
}

func TestSetInvokesOnChange(t *testing.T) {
	r := NewRegistry()
	var seen int
	r.Register(Schema{Name: "nncache", Kind: KindInt, Default: "200000", Min: 0, Max: 1e9}, func(v any) error {
		seen = v.(int)
		return nil
	})

	require.NoError(t, r.Set("nncache", "500000"))
	require.Equal(t, 500000, seen)
}

func TestSetLeavesValueUnchangedWhenOnChangeFails(t *testing.T) {
	r := NewRegistry()
	r.Register(Schema{Name: "backend", Kind: KindChoice, Default: "onnx", Choices: []string{"onnx", "http"}}, func(v any) error {
		return assert.AnError
	})

	require.Error(t, r.Set("backend", "http"))
	v, _ := r.Get("backend")
	require.Equal(t, "onnx", v)
}

func TestChoiceRejectsValueOutsideList(t *testing.T) {
	r := NewRegistry()
	DefaultOptionTable(r)
	require.Error(t, r.Set("backend", "grpc"))
}

func TestPresetRoundTrip(t *testing.T) {
	r := NewRegistry()
	DefaultOptionTable(r)
	require.NoError(t, r.Set("cpuct", "2.0"))

	preset := NewPresetFromRegistry("aggressive", r)
	require.Equal(t, "2.0", preset.Options["cpuct"])

	dir := t.TempDir()
	path := dir + "/aggressive.yaml"
	require.NoError(t, preset.Save(path))

	loaded, err := LoadPreset(path)
	require.NoError(t, err)
	require.Equal(t, "aggressive", loaded.Name)

	fresh := NewRegistry()
	DefaultOptionTable(fresh)
	require.NoError(t, loaded.ApplyTo(fresh))
	v, _ := fresh.Get("cpuct")
	require.Equal(t, "2.0", v)
}
