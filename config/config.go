// Package config layers process-startup configuration (viper: flags, env,
// optional file) and the live, mutable UCI option registry (§4.8) on top of
// it. The two are deliberately separate: Config is read once at startup;
// Registry can change at any point in a running process and drives search
// behavior immediately through per-option callbacks.
package config

import (
	"github.com/spf13/viper"
)

// Config holds the process-level settings read once at startup, generalized
// from the teacher's namsral/flag-based loader to a viper-based one so the
// same values can come from a flag, an environment variable, or a config
// file without the caller caring which.
type Config struct {
	WeightsPath string
	Backend     string
	BackendOpts string
	PresetsDir  string
	LogLevel    string
}

// Load populates c from command-line args, environment variables (prefixed
// CORVID_), and an optional config file, in that precedence order (viper's
// own precedence: explicit Set > flag > env > config file > default).
func Load(args []string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("corvid")
	v.AutomaticEnv()

	v.SetDefault("weights", "<autodiscover>")
	v.SetDefault("backend", "onnx")
	v.SetDefault("backend-opts", "")
	v.SetDefault("presets-dir", "./presets")
	v.SetDefault("log-level", "info")

	v.SetConfigName("corvid")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	if err := parseFlags(v, args); err != nil {
		return nil, err
	}

	return &Config{
		WeightsPath: v.GetString("weights"),
		Backend:     v.GetString("backend"),
		BackendOpts: v.GetString("backend-opts"),
		PresetsDir:  v.GetString("presets-dir"),
		LogLevel:    v.GetString("log-level"),
	}, nil
}
