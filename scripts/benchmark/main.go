package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"
)

// CLI flags
var (
	apiURL      = flag.String("api-url", "http://localhost:3001", "channelscope API base URL")
	runs        = flag.Int("runs", 3, "Number of runs per channel")
	concurrency = flag.Int("concurrency", 2, "Requests in flight at once")
	output      = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Channels covering the layouts the extractor has to cope with.
var testChannels = []struct {
	Label string
	URL   string
}{
	{"Handle", "https://www.youtube.com/@GoogleDevelopers"},
	{"Channel ID", "https://www.youtube.com/channel/UC_x5XG1OV2P6uZZ5FSM9Ttw"},
	{"Legacy user", "https://www.youtube.com/user/Google"},
	{"About tab", "https://www.youtube.com/@YouTube/about"},
}

// --- Response types (mirrors models package) ---

type channelRecord struct {
	ChannelID   string   `json:"channelId"`
	Thumbnail   string   `json:"thumbnail"`
	Tags        []string `json:"tags"`
	ChannelInfo struct {
		Name        string `json:"name"`
		Subscribers string `json:"subscribers"`
		TotalViews  string `json:"totalViews"`
		VideoCount  string `json:"videoCount"`
	} `json:"channelInfo"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- Benchmark result types ---

type runResult struct {
	Label      string   `json:"label"`
	URL        string   `json:"url"`
	Run        int      `json:"run"`
	LatencyMs  int64    `json:"latency_ms"`
	HTTPStatus int      `json:"http_status"`
	Resolved   int      `json:"resolved_fields"`
	Missing    []string `json:"missing_fields,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type benchmarkReport struct {
	Timestamp   string      `json:"timestamp"`
	APIURL      string      `json:"api_url"`
	RunsPerURL  int         `json:"runs_per_url"`
	Concurrency int         `json:"concurrency"`
	Results     []runResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== channelscope benchmark ===")
	fmt.Printf("API URL:      %s\n", *apiURL)
	fmt.Printf("Runs/URL:     %d\n", *runs)
	fmt.Printf("Concurrency:  %d\n", *concurrency)
	fmt.Printf("Output:       %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure channelscope is running (e.g. go run ./cmd/channelscope serve)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		APIURL:      *apiURL,
		RunsPerURL:  *runs,
		Concurrency: *concurrency,
	}

	client := &http.Client{Timeout: 150 * time.Second}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)
	for _, c := range testChannels {
		for i := 1; i <= *runs; i++ {
			g.Go(func() error {
				rr := benchmarkChannel(ctx, client, c.URL, i)
				rr.Label = c.Label
				mu.Lock()
				report.Results = append(report.Results, rr)
				mu.Unlock()
				if rr.Error != "" {
					fmt.Printf("  [%s] run %d FAILED: %s\n", c.Label, i, rr.Error)
				} else {
					fmt.Printf("  [%s] run %d OK  %dms  %d/6 fields\n", c.Label, i, rr.LatencyMs, rr.Resolved)
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	sort.Slice(report.Results, func(i, j int) bool {
		if report.Results[i].Label != report.Results[j].Label {
			return report.Results[i].Label < report.Results[j].Label
		}
		return report.Results[i].Run < report.Results[j].Run
	})

	fmt.Println()
	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkChannel(ctx context.Context, client *http.Client, channelURL string, run int) runResult {
	rr := runResult{URL: channelURL, Run: run}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		*apiURL+"/api/analyze?url="+url.QueryEscape(channelURL), nil)
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}

	start := time.Now()
	resp, err := client.Do(req)
	rr.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()
	rr.HTTPStatus = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		rr.Error = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, er.Error)
		return rr
	}

	var rec channelRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	fields := map[string]bool{
		"name":        rec.ChannelInfo.Name != "N/A",
		"subscribers": rec.ChannelInfo.Subscribers != "N/A",
		"totalViews":  rec.ChannelInfo.TotalViews != "N/A",
		"videoCount":  rec.ChannelInfo.VideoCount != "N/A",
		"channelId":   rec.ChannelID != "N/A",
		"thumbnail":   rec.Thumbnail != "",
	}
	for name, ok := range fields {
		if ok {
			rr.Resolved++
		} else {
			rr.Missing = append(rr.Missing, name)
		}
	}
	sort.Strings(rr.Missing)
	return rr
}

func printTable(results []runResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Channel\tRun\tLatency\tFields\tMissing\n")
	fmt.Fprintf(w, "───────\t───\t───────\t──────\t───────\n")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s\t%d\tFAILED\t-\t%s\n", r.Label, r.Run, truncate(r.Error, 40))
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%dms\t%d/6\t%s\n",
			r.Label, r.Run, r.LatencyMs, r.Resolved, strings.Join(r.Missing, ","))
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
