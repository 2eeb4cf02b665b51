package main

import (
	"testing"
	"time"
)

func TestPlaceCmdFlags(t *testing.T) {
	cmd := newPlaceCmd()
	f := cmd.Flags()

	// Test default values
	strategy, _ := f.GetString("strategy")
	if strategy != "verify" {
		t.Errorf("default strategy = %q, want verify", strategy)
	}
	outputFmt, _ := f.GetString("format")
	if outputFmt != "text" {
		t.Errorf("default format = %q, want text", outputFmt)
	}
	width, _ := f.GetInt("width")
	if width != 15 {
		t.Errorf("default width = %d, want 15", width)
	}

	// Test that flags exist
	for _, flag := range []string{
		"scenario", "width", "height", "poi", "chargers", "new-chargers", "seed",
		"gamma1", "gamma2", "gamma3", "gamma4", "strategy",
		"solver-url", "token", "reads", "budget", "timeout",
		"format", "show-map", "verbose",
	} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestMatrixCmdFlags(t *testing.T) {
	cmd := newMatrixCmd()
	f := cmd.Flags()

	outputFmt, _ := f.GetString("format")
	if outputFmt != "stats" {
		t.Errorf("default format = %q, want stats", outputFmt)
	}

	for _, flag := range []string{
		"scenario", "width", "height", "poi", "chargers", "new-chargers", "seed",
		"gamma1", "gamma2", "gamma3", "gamma4", "format",
	} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestResolveWeights(t *testing.T) {
	// Unset gammas derive from the candidate count, set ones stay.
	w := resolveWeights(10, 0, 0, 0, 0)
	if w.POIAttraction != 40 {
		t.Errorf("derived gamma1 = %g, want 40", w.POIAttraction)
	}
	if w.CountPenalty != 1000 {
		t.Errorf("derived gamma4 = %g, want 1000", w.CountPenalty)
	}

	w = resolveWeights(10, 2, 0, 0, 9)
	if w.POIAttraction != 2 {
		t.Errorf("explicit gamma1 = %g, want 2", w.POIAttraction)
	}
	if w.StationRepulsion != 10.0/3.0 {
		t.Errorf("derived gamma2 = %g, want %g", w.StationRepulsion, 10.0/3.0)
	}
	if w.CountPenalty != 9 {
		t.Errorf("explicit gamma4 = %g, want 9", w.CountPenalty)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"a", "b"}, "a"},
		{[]string{"", "b"}, "b"},
		{[]string{"", ""}, ""},
	}

	for _, tt := range tests {
		got := firstNonEmpty(tt.args...)
		if got != tt.want {
			t.Errorf("firstNonEmpty(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestPickFallbacks(t *testing.T) {
	if pickInt(0, 7) != 7 {
		t.Error("pickInt(0, 7) should fall back to 7")
	}
	if pickInt(3, 7) != 3 {
		t.Error("pickInt(3, 7) should keep 3")
	}
	if pickDuration(0, time.Minute) != time.Minute {
		t.Error("pickDuration(0, 1m) should fall back to 1m")
	}
	if pickDuration(time.Second, time.Minute) != time.Second {
		t.Error("pickDuration(1s, 1m) should keep 1s")
	}
}
