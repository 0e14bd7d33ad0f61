package config

import (
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// parseFlags declares the same flags the teacher's config.Load declared
// with namsral/flag, binds them into v so they take precedence over the
// config file and defaults, and parses args.
func parseFlags(v *viper.Viper, args []string) error {
	fs := flag.NewFlagSet("corvid", flag.ContinueOnError)
	fs.String("weights", v.GetString("weights"), "path to the neural weights file, or <autodiscover>")
	fs.String("backend", v.GetString("backend"), "evaluator backend name")
	fs.String("backend-opts", v.GetString("backend-opts"), "backend-specific options string")
	fs.String("presets-dir", v.GetString("presets-dir"), "directory holding search-parameter presets")
	fs.String("log-level", v.GetString("log-level"), "zerolog level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}
	return v.BindPFlags(fs)
}
