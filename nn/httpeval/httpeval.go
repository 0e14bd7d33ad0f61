// Package httpeval implements the nn.Evaluator contract by delegating to a
// remote inference service over HTTP, grounded directly on the teacher's
// bot/wolges_interface.go: JSON-marshal the batch, POST it under a short
// context timeout, JSON-unmarshal the response.
package httpeval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corvidchess/corvid/nn"
)

func init() {
	nn.Register("http", New)
}

type evaluator struct {
	url    string
	client *http.Client
}

// New is the nn.Factory registered under the "http" backend name; opts is
// the base URL of the remote inference service.
func New(opts string) (nn.Evaluator, error) {
	if opts == "" {
		return nil, fmt.Errorf("httpeval: no backend-opts URL configured")
	}
	return &evaluator{url: opts, client: http.DefaultClient}, nil
}

func (e *evaluator) Close() error { return nil }

func (e *evaluator) NewComputation() nn.Computation {
	return &computation{url: e.url, client: e.client}
}

type request struct {
	Positions []positionPayload `json:"positions"`
}

type positionPayload struct {
	Planes  []float32 `json:"planes"`
	NNMoves []uint16  `json:"nn_moves"`
}

type response struct {
	Results []struct {
		Value    float32            `json:"value"`
		Policy   map[uint16]float32 `json:"policy"`
	} `json:"results"`
}

type computation struct {
	url    string
	client *http.Client

	inputs  []nn.Input
	results []struct {
		Value  float32
		Policy map[uint16]float32
	}
}

func (c *computation) Add(in nn.Input) int {
	c.inputs = append(c.inputs, in)
	return len(c.inputs) - 1
}

func (c *computation) Compute() error {
	if len(c.inputs) == 0 {
		return nil
	}
	req := request{Positions: make([]positionPayload, len(c.inputs))}
	for i, in := range c.inputs {
		req.Positions[i] = positionPayload{Planes: in.Planes, NNMoves: in.NNIndices}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("httpeval: marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	httpReq, err := http.NewRequest("POST", c.url+"/evaluate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("httpeval: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	log.Debug().Int("positions", len(req.Positions)).Msg("httpeval: sending batch")

	resp, err := c.client.Do(httpReq.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("httpeval: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpeval: read response: %w", err)
	}
	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return fmt.Errorf("httpeval: unmarshal response: %w", err)
	}
	if len(r.Results) != len(c.inputs) {
		return fmt.Errorf("httpeval: expected %d results, got %d", len(c.inputs), len(r.Results))
	}
	c.results = make([]struct {
		Value  float32
		Policy map[uint16]float32
	}, len(r.Results))
	for i, res := range r.Results {
		c.results[i].Value = res.Value
		c.results[i].Policy = res.Policy
	}
	return nil
}

func (c *computation) Value(i int) float32 {
	return c.results[i].Value
}

func (c *computation) Policy(i int, nnIndex uint16) float32 {
	return c.results[i].Policy[nnIndex]
}
