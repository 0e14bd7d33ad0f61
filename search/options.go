package search

// Options bundles the search-tunable UCI options from spec §6 that
// selection, expansion, and the controller consult on every iteration.
// Kept as a single struct (rather than package-level globals) so a running
// engine can rebuild it under config's mutation callbacks without touching
// in-flight searches (§4.8: option changes take effect at the next search).
type Options struct {
	CPuct             float64
	FpuReduction      float64
	PolicySoftmaxTemp float64
	VirtualLossBug    float64

	MinibatchSize          int
	MaxPrefetch            int
	AllowedNodeCollisions  int

	Noise            bool
	DirichletAlpha   float64
	DirichletEpsilon float64

	Temperature     float64
	TempDecayMoves  int
	SmartPruning    bool

	Threads int

	// CacheHistoryLength is how many trailing positions the evaluator
	// cache fingerprint looks back over; spec §6's "cache-history-length"
	// option, range 0-7. The plane encoder does not use it (it always
	// encodes historyDepth positions).
	CacheHistoryLength int

	// BackpropBeta and BackpropGamma modulate the running-mean backup
	// recurrence (q += Beta*(v-q)/n^Gamma); both default to 1, which
	// reduces to the plain running mean. Not part of the advertised UCI
	// option set in spec §6 — these are training-time tuning knobs, not
	// engine-play knobs, per the original source's own option descriptions.
	BackpropBeta  float64
	BackpropGamma float64
}

// DefaultOptions mirrors the defaults advertised in spec §6.
func DefaultOptions() Options {
	return Options{
		CPuct:                 3.4,
		FpuReduction:          0.9,
		PolicySoftmaxTemp:     2.2,
		VirtualLossBug:        0,
		MinibatchSize:         256,
		MaxPrefetch:           32,
		AllowedNodeCollisions: 32,
		Noise:                 false,
		DirichletAlpha:        0.3,
		DirichletEpsilon:      0.25,
		Temperature:           0,
		TempDecayMoves:        0,
		SmartPruning:          true,
		Threads:               2,
		BackpropBeta:          1.0,
		BackpropGamma:         1.0,
		CacheHistoryLength:    7,
	}
}
