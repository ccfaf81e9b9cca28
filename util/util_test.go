package util_test

import (
	"testing"
	"time"

	"github.com/nasa-jpl/structurecam/util"
)

func TestSecsToDuration(t *testing.T) {
	var dur time.Duration = 123456789
	secs := dur.Seconds()
	out := util.SecsToDuration(secs)
	if out != dur {
		t.Errorf("expected SecsToDuration to round trip, output %v != expected %v", out, dur)
	}
}

func TestAllElementsNumbers(t *testing.T) {
	cases := map[string]bool{
		"0.033": true,
		"25":    true,
		"25ms":  false,
		"":      false,
	}
	for in, expected := range cases {
		if out := util.AllElementsNumbers(in); out != expected {
			t.Errorf("AllElementsNumbers(%q): expected %v got %v", in, expected, out)
		}
	}
}

func TestSubMuxSanitize(t *testing.T) {
	cases := map[string]string{
		"":              "/",
		"/":             "/",
		"structure":     "/structure",
		"/structure/":   "/structure",
		"/lab/struct/*": "/lab/struct",
	}
	for in, expected := range cases {
		if out := util.SubMuxSanitize(in); out != expected {
			t.Errorf("SubMuxSanitize(%q): expected %q got %q", in, expected, out)
		}
	}
}
