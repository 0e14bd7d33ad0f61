// Package nulleval is a deterministic, weight-free evaluator backend used
// by tests and by the "null" backend option, grounded on the teacher's
// testcommon fixtures and on zobrist.Initialize's use of frand to fill a
// fixed pseudo-random lookup table once at construction, then index into it
// deterministically rather than reseed per call.
package nulleval

import (
	"lukechampine.com/frand"

	"github.com/corvidchess/corvid/nn"
)

func init() {
	nn.Register("null", New)
}

const valueTableSize = 4096

// New is the nn.Factory registered under the "null" backend name; opts is
// ignored.
func New(opts string) (nn.Evaluator, error) {
	e := &evaluator{values: make([]float32, valueTableSize)}
	for i := range e.values {
		e.values[i] = float32(frand.Intn(2001)-1000) / 1000.0
	}
	return e, nil
}

type evaluator struct {
	values []float32
}

func (e *evaluator) Close() error { return nil }

func (e *evaluator) NewComputation() nn.Computation {
	return &computation{values: e.values}
}

type computation struct {
	values []float32
	inputs []nn.Input
}

func (c *computation) Add(in nn.Input) int {
	c.inputs = append(c.inputs, in)
	return len(c.inputs) - 1
}

func (c *computation) Compute() error {
	return nil
}

// Value returns a value looked up by a checksum of the input planes, so
// repeated evaluations of the same position are deterministic (spec §5's
// single-thread determinism note) while distinct positions usually differ.
func (c *computation) Value(i int) float32 {
	return c.values[planeChecksum(c.inputs[i].Planes)%uint32(len(c.values))]
}

// Policy returns a uniform prior over the position's legal moves so that
// expansion always produces a valid probability distribution without a
// real network attached.
func (c *computation) Policy(i int, nnIndex uint16) float32 {
	in := c.inputs[i]
	if len(in.NNIndices) == 0 {
		return 0
	}
	return 1.0 / float32(len(in.NNIndices))
}

func planeChecksum(planes []float32) uint32 {
	var h uint32 = 2166136261
	for _, p := range planes {
		h ^= uint32(int32(p * 997))
		h *= 16777619
	}
	return h
}
