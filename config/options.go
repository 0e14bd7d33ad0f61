package config

import "strconv"

// DefaultOptionTable registers every option advertised in spec §6, with the
// defaults, ranges, and choices given there. Callers attach onChange
// callbacks by registering a name again after this (see uci.NewEngine)
// where the option needs to take immediate effect (cache size) versus at
// the next readiness check (weights/backend).
func DefaultOptionTable(r *Registry) {
	str := func(name, def string) Schema { return Schema{Name: name, Kind: KindString, Default: def} }
	choice := func(name, def string, choices ...string) Schema {
		return Schema{Name: name, Kind: KindChoice, Default: def, Choices: choices}
	}
	intOpt := func(name string, def, min, max int) Schema {
		return Schema{Name: name, Kind: KindInt, Default: strconv.Itoa(def), Min: float64(min), Max: float64(max)}
	}
	floatOpt := func(name string, def, min, max float64) Schema {
		return Schema{Name: name, Kind: KindFloat, Default: strconv.FormatFloat(def, 'g', -1, 64), Min: min, Max: max}
	}
	boolOpt := func(name string, def bool) Schema {
		v := "false"
		if def {
			v = "true"
		}
		return Schema{Name: name, Kind: KindBool, Default: v}
	}

	r.Register(str("weights", "<autodiscover>"), nil)
	r.Register(choice("backend", "onnx", "onnx", "http"), nil)
	r.Register(str("backend-opts", ""), nil)

	r.Register(intOpt("threads", 2, 1, 128), nil)
	r.Register(intOpt("nncache", 200000, 0, 1_000_000_000), nil)

	r.Register(intOpt("minibatch-size", 256, 1, 1024), nil)
	r.Register(intOpt("max-prefetch", 32, 0, 1024), nil)
	r.Register(intOpt("allowed-node-collisions", 32, 0, 1024), nil)

	r.Register(floatOpt("cpuct", 3.4, 0, 100), nil)
	r.Register(floatOpt("fpu-reduction", 0.9, -100, 100), nil)
	r.Register(floatOpt("policy-softmax-temp", 2.2, 0.1, 10), nil)

	r.Register(floatOpt("temperature", 0, 0, 100), nil)
	r.Register(intOpt("tempdecay-moves", 0, 0, 1000), nil)
	r.Register(boolOpt("noise", false), nil)
	r.Register(boolOpt("smart-pruning", true), nil)
	r.Register(boolOpt("verbose-move-stats", false), nil)
	r.Register(floatOpt("virtual-loss-bug", 0, -100, 100), nil)

	r.Register(floatOpt("slowmover", 1.93, 0, 100), nil)
	r.Register(intOpt("move-overhead", 100, 0, 60000), nil)

	r.Register(floatOpt("time-curve-peak", 26, -1000, 1000), nil)
	r.Register(floatOpt("time-curve-left-width", 67, 0.001, 1000), nil)
	r.Register(floatOpt("time-curve-right-width", 76, 0.001, 1000), nil)

	r.Register(intOpt("cache-history-length", 7, 0, 7), nil)
}
