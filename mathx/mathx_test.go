package mathx_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/nasa-jpl/structurecam/mathx"
)

func ExampleRound() {
	fmt.Println(mathx.Round(0.0333, 0.01))
	// Output: 0.03
}

func TestClampHigh(t *testing.T) {
	var (
		low   = 0.
		high  = 10.
		input = 20.
	)
	clamped := mathx.Clamp(input, low, high)
	if clamped != high {
		t.Errorf("expected out of range value %f to be clipped to %f, got %f", input, high, clamped)
	}
}

func TestClampLow(t *testing.T) {
	var (
		low   = 0.
		high  = 10.
		input = -1.
	)
	clamped := mathx.Clamp(input, low, high)
	if clamped != low {
		t.Errorf("expected out of range value %f to be clipped to %f, got %f", input, low, clamped)
	}
}

func TestClampInRangeIsIdentity(t *testing.T) {
	if out := mathx.Clamp(4.25, 0, 10); out != 4.25 {
		t.Errorf("expected in range value to pass through, got %f", out)
	}
}

func TestClampPropagatesNaN(t *testing.T) {
	if out := mathx.Clamp(math.NaN(), 0, 10); !math.IsNaN(out) {
		t.Errorf("expected NaN to propagate, got %f", out)
	}
}
