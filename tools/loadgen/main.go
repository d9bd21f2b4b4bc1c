// Command loadgen drives concurrent projection traffic against a running
// CorpFin backend and reports latency percentiles and cache behavior.
//
// By default every request carries the same model inputs, so after the first
// run the server answers from its result cache and the numbers measure the
// read path. Pass -distinct to give every request its own growth vector and
// force the solver to run each time.
//
//	loadgen -url http://localhost:8080 -workers 8 -requests 200
//	loadgen -distinct -token "$(fincli token)"
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"time"
)

const projectionsPath = "/api/v1/model/projections"

var (
	baseURL  = flag.String("url", "http://localhost:8080", "base URL of the backend")
	workers  = flag.Int("workers", 8, "concurrent request workers")
	requests = flag.Int("requests", 100, "total number of requests")
	token    = flag.String("token", "", "bearer token for deployments with auth enabled")
	distinct = flag.Bool("distinct", false, "vary inputs per request so every run computes instead of hitting the cache")
	timeout  = flag.Duration("timeout", 30*time.Second, "per-request timeout")
	years    = flag.Int("years", 5, "projection horizon per request")
)

type result struct {
	latency  time.Duration
	status   int
	cacheHit bool
	err      error
}

func main() {
	flag.Parse()
	if *workers < 1 || *requests < 1 || *years < 1 {
		fmt.Fprintln(os.Stderr, "workers, requests and years must be positive")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := &http.Client{Timeout: *timeout}
	jobs := make(chan int)
	results := make(chan result, *requests)

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				results <- fire(ctx, client, n)
			}
		}()
	}

	start := time.Now()
	go func() {
		defer close(jobs)
		for n := 0; n < *requests; n++ {
			select {
			case jobs <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()
	close(results)
	elapsed := time.Since(start)

	report(collect(results), elapsed)
}

// fire sends one projection request and classifies the outcome.
func fire(ctx context.Context, client *http.Client, n int) result {
	body, err := payload(n, *distinct, *years)
	if err != nil {
		return result{err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *baseURL+projectionsPath, bytes.NewReader(body))
	if err != nil {
		return result{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	begin := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(begin)
	if err != nil {
		return result{latency: latency, err: err}
	}
	defer resp.Body.Close()

	var envelope struct {
		Data struct {
			CacheHit bool `json:"cache_hit"`
		} `json:"data"`
	}
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return result{latency: latency, status: resp.StatusCode, err: err}
		}
	} else {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return result{latency: latency, status: resp.StatusCode, cacheHit: envelope.Data.CacheHit}
}

// payload builds the projection request body. With distinct set, request n
// gets a slightly different first-year growth rate, which changes the cache
// key without changing the economics.
func payload(n int, distinct bool, years int) ([]byte, error) {
	growth := make([]float64, years)
	for i := range growth {
		growth[i] = 0.05
	}
	if distinct {
		growth[0] = 0.05 + float64(n%1000)*0.00001
	}

	req := map[string]interface{}{
		"base_year": map[string]float64{
			"revenue":             48500000,
			"receivables":         5900000,
			"inventory":           4100000,
			"payables":            3600000,
			"net_ppe":             21800000,
			"total_debt":          12400000,
			"shareholders_equity": 19000000,
			"cash":                3200000,
		},
		"assumptions": map[string]interface{}{
			"growth_rates":        growth,
			"cogs_pct":            0.58,
			"sga_pct":             0.16,
			"rd_pct":              0.03,
			"depreciation_pct":    0.08,
			"interest_rate":       0.055,
			"tax_rate":            0.24,
			"dso_days":            44,
			"dio_days":            31,
			"dpo_days":            38,
			"capex_pct":           0.06,
			"debt_repayment_pct":  0.08,
			"dividend_payout_pct": 0.35,
			"minimum_cash":        1500000,
		},
	}
	return json.Marshal(req)
}

type tally struct {
	latencies []time.Duration
	ok        int
	rejected  int
	hits      int
	errors    int
}

func collect(results <-chan result) tally {
	var t tally
	for r := range results {
		switch {
		case r.err != nil:
			t.errors++
		case r.status == http.StatusOK:
			t.ok++
			t.latencies = append(t.latencies, r.latency)
			if r.cacheHit {
				t.hits++
			}
		default:
			t.rejected++
		}
	}
	return t
}

func report(t tally, elapsed time.Duration) {
	total := t.ok + t.rejected + t.errors
	fmt.Printf("requests:   %d in %s (%.1f req/s)\n", total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	fmt.Printf("ok:         %d\n", t.ok)
	fmt.Printf("rejected:   %d\n", t.rejected)
	fmt.Printf("errors:     %d\n", t.errors)
	if t.ok > 0 {
		fmt.Printf("cache hits: %d (%.0f%%)\n", t.hits, 100*float64(t.hits)/float64(t.ok))
		fmt.Printf("latency:    p50=%s p90=%s p99=%s max=%s\n",
			percentile(t.latencies, 0.50).Round(time.Microsecond),
			percentile(t.latencies, 0.90).Round(time.Microsecond),
			percentile(t.latencies, 0.99).Round(time.Microsecond),
			percentile(t.latencies, 1.00).Round(time.Microsecond),
		)
	}
	if t.errors > 0 || t.rejected > 0 {
		os.Exit(1)
	}
}

// percentile returns the p-th latency from a copy of the sample. p is
// clamped to [0,1]; an empty sample reports zero.
func percentile(samples []time.Duration, p float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
