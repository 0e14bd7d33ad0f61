package config

import (
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Preset is a named, persisted set of search-parameter option values (§3.1):
// a convenience so a GUI or script can switch configurations without
// re-typing every setoption. Saving/loading a preset never changes the live
// option-registry semantics of §4.8 by itself — ApplyTo does that
// explicitly, one Registry.Set call per stored option.
type Preset struct {
	Name    string            `yaml:"name"`
	Options map[string]string `yaml:"options"`
}

// NewPresetFromRegistry snapshots every currently registered option into a
// named preset.
func NewPresetFromRegistry(name string, r *Registry) *Preset {
	p := &Preset{Name: name, Options: make(map[string]string)}
	for _, schema := range r.Advertise() {
		if v, ok := r.Get(schema.Name); ok {
			p.Options[schema.Name] = v
		}
	}
	return p
}

// LoadPreset reads a preset file via viper's config-file support, so the
// same YAML the engine writes can also be hand-edited or driven by env
// overrides layered on top by the caller.
func LoadPreset(path string) (*Preset, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var p Preset
	if err := v.Unmarshal(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the preset as YAML.
func (p *Preset) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyTo sets every option stored in the preset on r, stopping at the
// first failure (an option in the preset that no longer exists, or whose
// stored value no longer validates).
func (p *Preset) ApplyTo(r *Registry) error {
	for name, value := range p.Options {
		if err := r.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}
