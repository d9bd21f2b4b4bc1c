package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	samples := []time.Duration{
		5 * time.Millisecond,
		1 * time.Millisecond,
		3 * time.Millisecond,
		2 * time.Millisecond,
		4 * time.Millisecond,
	}

	cases := []struct {
		p    float64
		want time.Duration
	}{
		{0.0, 1 * time.Millisecond},
		{0.5, 3 * time.Millisecond},
		{0.9, 5 * time.Millisecond},
		{1.0, 5 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := percentile(samples, tc.p); got != tc.want {
			t.Errorf("percentile(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}

	// The input order must survive.
	if samples[0] != 5*time.Millisecond {
		t.Errorf("percentile mutated its input: %v", samples)
	}
}

func TestPercentileEmpty(t *testing.T) {
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %v, want 0", got)
	}
}

func TestPayloadStableWithoutDistinct(t *testing.T) {
	first, err := payload(0, false, 5)
	if err != nil {
		t.Fatal(err)
	}
	second, err := payload(7, false, 5)
	if err != nil {
		t.Fatal(err)
	}

	// Identical bodies are the point: they share one server cache entry.
	if !bytes.Equal(first, second) {
		t.Error("payloads must be identical when distinct is off")
	}
}

func TestPayloadVariesWithDistinct(t *testing.T) {
	first, err := payload(1, true, 5)
	if err != nil {
		t.Fatal(err)
	}
	second, err := payload(2, true, 5)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(first, second) {
		t.Error("distinct payloads must differ between requests")
	}
}

func TestPayloadHorizon(t *testing.T) {
	body, err := payload(0, false, 3)
	if err != nil {
		t.Fatal(err)
	}

	var req struct {
		Assumptions struct {
			GrowthRates []float64 `json:"growth_rates"`
		} `json:"assumptions"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatal(err)
	}
	if len(req.Assumptions.GrowthRates) != 3 {
		t.Errorf("got %d growth rates, want 3", len(req.Assumptions.GrowthRates))
	}
}
