package rufus

import "testing"

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1w2d", 777600},
		{"-1h", -3600},
		{"1h10s", 3610},
		{"500", 500},
		{"-0.5", -0.5},
		{"1y", 31536000},
		{"1M", 2592000},
		{"0s", 0},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		if err != nil {
			t.Errorf("ParseDuration(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseDurationRejectsGarbage(t *testing.T) {
	if _, err := ParseDuration("banana"); err == nil {
		t.Fatal("expected an error for unrecognised input")
	}
}

func TestParseDurationQuiet(t *testing.T) {
	got, err := ParseDuration("banana", WithQuietDuration())
	if err != nil {
		t.Fatalf("expected no error in quiet mode, got %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{3661, "1h1m1s"},
		{7 * 24 * 3600, "1w"},
		{0, "0s"},
		{-3600, "-1h"},
	}
	for _, c := range cases {
		got := FormatDuration(c.in)
		if got != c.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDurationRoundTrip(t *testing.T) {
	for _, x := range []float64{0, 1, 61, 3661, 604800, 777600} {
		s := FormatDuration(x)
		got, err := ParseDuration(s)
		if err != nil {
			t.Fatalf("ParseDuration(%q): %v", s, err)
		}
		if got != x {
			t.Fatalf("round-trip for %v: FormatDuration -> %q -> ParseDuration -> %v", x, s, got)
		}
	}
}
