// Package benchmark drives concurrent load against the HTTP API and summarises
// latency and status codes.
package benchmark

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIBenchmark fires Requests calls with at most Concurrency in flight.
type APIBenchmark struct {
	BaseURL     string
	Concurrency int
	Requests    int
	AuthToken   string
	Client      *resty.Client
}

// BenchmarkResult summarises one run.
type BenchmarkResult struct {
	URL            string        `json:"url"`
	Method         string        `json:"method"`
	Concurrency    int           `json:"concurrency"`
	TotalRequests  int           `json:"totalRequests"`
	SuccessCount   int           `json:"successCount"`
	FailureCount   int           `json:"failureCount"`
	TotalTime      time.Duration `json:"totalTime"`
	AverageTime    time.Duration `json:"averageTime"`
	MinTime        time.Duration `json:"minTime"`
	MaxTime        time.Duration `json:"maxTime"`
	RequestsPerSec float64       `json:"requestsPerSec"`
	StatusCodes    map[int]int   `json:"statusCodes"`
	CacheHits      int           `json:"cacheHits"`
	Errors         []string      `json:"errors"`
}

type requestResult struct {
	duration   time.Duration
	statusCode int
	cacheHit   bool
	err        error
}

func NewAPIBenchmark(baseURL string, concurrency, requests int, authToken string) *APIBenchmark {
	if concurrency < 1 {
		concurrency = 1
	}
	return &APIBenchmark{
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		Concurrency: concurrency,
		Requests:    requests,
		AuthToken:   authToken,
		Client:      resty.New().SetTimeout(10 * time.Second),
	}
}

func (b *APIBenchmark) RunGET(ctx context.Context, path string) *BenchmarkResult {
	return b.run(ctx, resty.MethodGet, path, nil)
}

func (b *APIBenchmark) RunPOST(ctx context.Context, path string, payload interface{}) *BenchmarkResult {
	return b.run(ctx, resty.MethodPost, path, payload)
}

func (b *APIBenchmark) RunPATCH(ctx context.Context, path string, payload interface{}) *BenchmarkResult {
	return b.run(ctx, resty.MethodPatch, path, payload)
}

func (b *APIBenchmark) run(ctx context.Context, method, path string, payload interface{}) *BenchmarkResult {
	url := b.BaseURL + path
	results := make(chan requestResult, b.Requests)
	limiter := make(chan struct{}, b.Concurrency)
	var wg sync.WaitGroup

	startTime := time.Now()
	for i := 0; i < b.Requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter <- struct{}{}
			defer func() { <-limiter }()

			req := b.Client.R().SetContext(ctx)
			if payload != nil {
				req.SetHeader("Content-Type", "application/json").SetBody(payload)
			}
			if b.AuthToken != "" {
				req.SetAuthToken(b.AuthToken)
			}

			start := time.Now()
			resp, err := req.Execute(method, url)
			if err != nil {
				results <- requestResult{err: err}
				return
			}
			results <- requestResult{
				duration:   time.Since(start),
				statusCode: resp.StatusCode(),
				cacheHit:   resp.Header().Get("X-Cache") == "HIT",
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &BenchmarkResult{
		URL:           url,
		Method:        method,
		Concurrency:   b.Concurrency,
		TotalRequests: b.Requests,
		StatusCodes:   make(map[int]int),
	}
	var totalTime time.Duration
	for r := range results {
		if r.err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, r.err.Error())
			continue
		}

		totalTime += r.duration
		if result.MinTime == 0 || r.duration < result.MinTime {
			result.MinTime = r.duration
		}
		if r.duration > result.MaxTime {
			result.MaxTime = r.duration
		}
		if r.cacheHit {
			result.CacheHits++
		}

		result.StatusCodes[r.statusCode]++
		if r.statusCode >= 200 && r.statusCode < 300 {
			result.SuccessCount++
		} else {
			result.FailureCount++
		}
	}

	result.TotalTime = time.Since(startTime)
	if result.TotalTime > 0 {
		result.RequestsPerSec = float64(b.Requests) / result.TotalTime.Seconds()
	}
	if completed := result.SuccessCount + result.FailureCount - len(result.Errors); completed > 0 {
		result.AverageTime = totalTime / time.Duration(completed)
	}
	return result
}

// SuccessRate is the share of requests answered with a 2xx status.
func (r *BenchmarkResult) SuccessRate() float64 {
	if r.TotalRequests == 0 {
		return 0
	}
	return float64(r.SuccessCount) / float64(r.TotalRequests)
}

// Summary renders the result for test logs. At most five errors are listed.
func (r *BenchmarkResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", r.Method, r.URL)
	fmt.Fprintf(&sb, "  concurrency %d, requests %d, ok %d, failed %d, cache hits %d\n",
		r.Concurrency, r.TotalRequests, r.SuccessCount, r.FailureCount, r.CacheHits)
	fmt.Fprintf(&sb, "  total %s, avg %s, min %s, max %s, %.2f req/s\n",
		r.TotalTime, r.AverageTime, r.MinTime, r.MaxTime, r.RequestsPerSec)

	codes := make([]int, 0, len(r.StatusCodes))
	for c := range r.StatusCodes {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	for _, c := range codes {
		fmt.Fprintf(&sb, "  %d: %d\n", c, r.StatusCodes[c])
	}

	for i, err := range r.Errors {
		if i == 5 {
			fmt.Fprintf(&sb, "  ... %d more errors\n", len(r.Errors)-5)
			break
		}
		fmt.Fprintf(&sb, "  %s\n", err)
	}
	return sb.String()
}
