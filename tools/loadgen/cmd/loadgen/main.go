// Command loadgen drives synthetic read/rebuild traffic against a running
// BizLens backend. Company IDs are seeded into a parameter pool and drawn
// at random per request, so the traffic mix touches a realistic spread of
// companies instead of hammering one row.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/bizlens/tools/loadgen/internal/pool"
)

var sectionNames = []string{
	"identity", "financials", "assessment", "valuation", "tasks",
	"evidence", "signals", "engagement", "aiContext",
	"naFlags", "disclosures", "notes",
}

type stats struct {
	requests  atomic.Int64
	errors    atomic.Int64
	non2xx    atomic.Int64
	latencyMu sync.Mutex
	latencies []time.Duration
}

func (s *stats) record(d time.Duration, err error, status int) {
	s.requests.Add(1)
	if err != nil {
		s.errors.Add(1)
		return
	}
	if status < 200 || status >= 300 {
		s.non2xx.Add(1)
	}
	s.latencyMu.Lock()
	s.latencies = append(s.latencies, d)
	s.latencyMu.Unlock()
}

func (s *stats) percentile(p float64) time.Duration {
	s.latencyMu.Lock()
	defer s.latencyMu.Unlock()
	if len(s.latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(s.latencies))
	copy(sorted, s.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func main() {
	var (
		baseURL     = flag.String("base-url", "http://localhost:8080", "Backend base URL")
		companies   = flag.String("companies", "", "Comma-separated company UUIDs to target (required)")
		workers     = flag.Int("workers", 8, "Concurrent workers")
		duration    = flag.Duration("duration", time.Minute, "How long to run")
		rebuildPct  = flag.Int("rebuild-pct", 5, "Percentage of requests that trigger a dossier rebuild")
		archivePct  = flag.Int("archive-pct", 2, "Percentage of requests that trigger an archive export")
		reqTimeout  = flag.Duration("timeout", 10*time.Second, "Per-request timeout")
		poolMaxSize = flag.Int("pool-size", 1000, "Max pool values per semantic type")
	)
	flag.Parse()

	ids := strings.Split(*companies, ",")
	if *companies == "" || len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "loadgen: -companies is required (comma-separated UUIDs)")
		os.Exit(2)
	}

	cfg := pool.DefaultPoolConfig()
	cfg.MaxValuesPerType = *poolMaxSize
	params := pool.NewShardedParameterPool(cfg)
	defer params.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, err := params.Add(ctx, pool.NewParameterValue(id, pool.SemanticTypeCompanyID, 0)); err != nil {
			fmt.Fprintf(os.Stderr, "loadgen: seeding company pool: %v\n", err)
			os.Exit(1)
		}
	}
	for _, name := range sectionNames {
		if _, err := params.Add(ctx, pool.NewParameterValue(name, pool.SemanticTypeSectionName, 0)); err != nil {
			fmt.Fprintf(os.Stderr, "loadgen: seeding section pool: %v\n", err)
			os.Exit(1)
		}
	}

	// Ctrl-C ends the run early but still prints the summary.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	client := &http.Client{Timeout: *reqTimeout}
	st := &stats{}
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for ctx.Err() == nil {
				companyVal, err := params.GetRandom(ctx, pool.SemanticTypeCompanyID)
				if err != nil {
					return
				}
				companyID := companyVal.Value.(string)

				method, url := pickRequest(ctx, rng, params, *baseURL, companyID, *rebuildPct, *archivePct)
				st.record(doRequest(ctx, client, method, url))
			}
		}(time.Now().UnixNano() + int64(i))
	}
	wg.Wait()

	elapsed := time.Since(start)
	total := st.requests.Load()
	fmt.Printf("requests:   %d (%.1f/s)\n", total, float64(total)/elapsed.Seconds())
	fmt.Printf("errors:     %d\n", st.errors.Load())
	fmt.Printf("non-2xx:    %d\n", st.non2xx.Load())
	fmt.Printf("latency p50: %s\n", st.percentile(0.50))
	fmt.Printf("latency p95: %s\n", st.percentile(0.95))
	fmt.Printf("latency p99: %s\n", st.percentile(0.99))
}

// pickRequest chooses an endpoint for one iteration. Reads dominate;
// rebuilds and archives make up the configured small slices.
func pickRequest(ctx context.Context, rng *rand.Rand, params pool.ParameterPool, baseURL, companyID string, rebuildPct, archivePct int) (string, string) {
	roll := rng.Intn(100)
	switch {
	case roll < rebuildPct:
		return http.MethodPost, fmt.Sprintf("%s/api/v1/companies/%s/dossier/rebuild", baseURL, companyID)
	case roll < rebuildPct+archivePct:
		return http.MethodPost, fmt.Sprintf("%s/api/v1/companies/%s/intelligence/archive", baseURL, companyID)
	case roll < rebuildPct+archivePct+20:
		return http.MethodGet, fmt.Sprintf("%s/api/v1/companies/%s/dossier", baseURL, companyID)
	case roll < rebuildPct+archivePct+50:
		if sectionVal, err := params.GetRandom(ctx, pool.SemanticTypeSectionName); err == nil {
			section := sectionVal.Value.(string)
			return http.MethodGet, fmt.Sprintf("%s/api/v1/companies/%s/intelligence/sections/%s", baseURL, companyID, section)
		}
		fallthrough
	default:
		return http.MethodGet, fmt.Sprintf("%s/api/v1/companies/%s/intelligence", baseURL, companyID)
	}
}

func doRequest(ctx context.Context, client *http.Client, method, url string) (time.Duration, error, int) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err, 0
	}
	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return elapsed, err, 0
	}
	resp.Body.Close()
	return elapsed, nil, resp.StatusCode
}
