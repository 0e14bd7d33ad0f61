package httpeval

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corvidchess/corvid/nn"
)

func TestNewRejectsEmptyOpts(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty backend-opts")
	}
}

func TestComputeRoundTripsAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("server decode: %v", err)
		}
		resp := response{}
		for range req.Positions {
			resp.Results = append(resp.Results, struct {
				Value  float32            `json:"value"`
				Policy map[uint16]float32 `json:"policy"`
			}{Value: 0.5, Policy: map[uint16]float32{7: 0.25}})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	c := e.NewComputation()
	i := c.Add(nn.Input{Planes: []float32{1, 2}, NNIndices: []uint16{7}})
	if err := c.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got := c.Value(i); got != 0.5 {
		t.Fatalf("Value = %v, want 0.5", got)
	}
	if got := c.Policy(i, 7); got != 0.25 {
		t.Fatalf("Policy = %v, want 0.25", got)
	}
}

func TestComputeErrorsOnResultCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(response{})
	}))
	defer srv.Close()

	e, _ := New(srv.URL)
	c := e.NewComputation()
	c.Add(nn.Input{Planes: []float32{1}})
	if err := c.Compute(); err == nil {
		t.Fatal("expected error on result count mismatch")
	}
}

func TestComputeIsNoopWithNoInputs(t *testing.T) {
	e, _ := New("http://unused.invalid")
	c := e.NewComputation()
	if err := c.Compute(); err != nil {
		t.Fatalf("Compute with no inputs should be a no-op: %v", err)
	}
}
