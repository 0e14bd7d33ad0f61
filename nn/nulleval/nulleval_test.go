package nulleval

import (
	"testing"

	"github.com/corvidchess/corvid/nn"
)

func TestValueIsDeterministicForSameInput(t *testing.T) {
	e, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	planes := []float32{1, 2, 3, 4}

	c1 := e.NewComputation()
	i1 := c1.Add(nn.Input{Planes: planes})
	if err := c1.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	c2 := e.NewComputation()
	i2 := c2.Add(nn.Input{Planes: planes})
	if err := c2.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if c1.Value(i1) != c2.Value(i2) {
		t.Fatalf("value not deterministic for identical planes: %v != %v", c1.Value(i1), c2.Value(i2))
	}
}

func TestPolicyUniformDistribution(t *testing.T) {
	e, _ := New("")
	c := e.NewComputation()
	i := c.Add(nn.Input{NNIndices: []uint16{1, 2, 3, 4}})
	_ = c.Compute()
	got := c.Policy(i, 1)
	want := float32(1.0 / 4.0)
	if got != want {
		t.Fatalf("Policy = %v, want %v", got, want)
	}
}

func TestPolicyZeroWhenNoLegalMoves(t *testing.T) {
	e, _ := New("")
	c := e.NewComputation()
	i := c.Add(nn.Input{})
	_ = c.Compute()
	if got := c.Policy(i, 0); got != 0 {
		t.Fatalf("Policy with no moves = %v, want 0", got)
	}
}

func TestCloseIsNoop(t *testing.T) {
	e, _ := New("")
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
