// Package onnxeval implements the nn.Evaluator contract on top of an ONNX
// graph, grounded directly on the teacher's cmd/nninfer tool: planes become
// a tensor.New(...)-backed input, the graph runs through gorgonnx, and the
// outputs are read back as []float32. Everything about the graph itself
// (convolutions, batch-norm, the weight file format) is this package's
// external collaborator, per spec §1 — onnxeval only shapes inputs and
// reads outputs.
package onnxeval

import (
	"fmt"
	"os"

	onnx "github.com/owulveryck/onnx-go"
	"github.com/owulveryck/onnx-go/backend/x/gorgonnx"
	"github.com/rs/zerolog/log"
	"gorgonia.org/tensor"

	"github.com/corvidchess/corvid/nn"
)

// Plane geometry for the encoded position-history stack: C history/meta
// planes over an 8x8 board. PolicySize is the width of the dense nn-index
// policy output (see chess.Move.NNIndex): four 4096-wide promotion bands.
const (
	Channels   = 112
	Height     = 8
	Width      = 8
	PolicySize = 4 * 4096
)

func init() {
	nn.Register("onnx", New)
}

type evaluator struct {
	weightsPath string
}

// New is the nn.Factory registered under the "onnx" backend name; opts is
// the path to the .onnx weights file (the "weights" option, spec §6).
func New(opts string) (nn.Evaluator, error) {
	if opts == "" || opts == "<autodiscover>" {
		return nil, fmt.Errorf("onnxeval: no weights file configured")
	}
	if _, err := os.Stat(opts); err != nil {
		return nil, fmt.Errorf("onnxeval: weights file: %w", err)
	}
	return &evaluator{weightsPath: opts}, nil
}

func (e *evaluator) Close() error { return nil }

func (e *evaluator) NewComputation() nn.Computation {
	return &computation{weightsPath: e.weightsPath}
}

type computation struct {
	weightsPath string
	inputs      []nn.Input
	values      []float32
	policies    []map[uint16]float32
}

func (c *computation) Add(in nn.Input) int {
	c.inputs = append(c.inputs, in)
	return len(c.inputs) - 1
}

// Compute loads the graph once and runs it once per queued input. A true
// dynamic-batch ONNX graph would let this be a single forward pass; the
// teacher's own onnx-go usage (cmd/nninfer) only ever built a batch-size-1
// graph, so this mirrors that shape rather than assuming batching support
// that the graph may not export. The one-NN-call-per-compute guarantee the
// core relies on (spec §4.4) is about batch.Computation's call into this
// method, which this satisfies regardless of the internal loop.
func (c *computation) Compute() error {
	if len(c.inputs) == 0 {
		return nil
	}
	backend := gorgonnx.NewGraph()
	model := onnx.NewModel(backend)
	b, err := os.ReadFile(c.weightsPath)
	if err != nil {
		return fmt.Errorf("onnxeval: read weights: %w", err)
	}
	if err := model.UnmarshalBinary(b); err != nil {
		return fmt.Errorf("onnxeval: unmarshal model: %w", err)
	}

	c.values = make([]float32, len(c.inputs))
	c.policies = make([]map[uint16]float32, len(c.inputs))

	for i, in := range c.inputs {
		planes := tensor.New(tensor.WithShape(1, Channels, Height, Width), tensor.WithBacking(in.Planes))
		model.SetInput(0, planes)

		if err := backend.Run(); err != nil {
			return fmt.Errorf("onnxeval: run: %w", err)
		}
		outputs, err := model.GetOutputTensors()
		if err != nil {
			return fmt.Errorf("onnxeval: outputs: %w", err)
		}
		if len(outputs) < 2 {
			return fmt.Errorf("onnxeval: expected policy+value outputs, got %d", len(outputs))
		}
		policyData, ok := outputs[0].Data().([]float32)
		if !ok {
			return fmt.Errorf("onnxeval: policy output is not []float32")
		}
		valueData, ok := outputs[1].Data().([]float32)
		if !ok {
			return fmt.Errorf("onnxeval: value output is not []float32")
		}
		c.values[i] = valueData[0]
		priors := make(map[uint16]float32, len(in.NNIndices))
		for _, idx := range in.NNIndices {
			if int(idx) < len(policyData) {
				priors[idx] = policyData[idx]
			}
		}
		c.policies[i] = priors
	}
	log.Debug().Int("batch", len(c.inputs)).Msg("onnxeval: computed")
	return nil
}

func (c *computation) Value(i int) float32 {
	return c.values[i]
}

func (c *computation) Policy(i int, nnIndex uint16) float32 {
	return c.policies[i][nnIndex]
}
