// Package display provides table and JSON output for sluicectl commands.
//
// Every function honours the global --output flag: "json" encodes the value
// as indented JSON, anything else renders a text/tabwriter table. Verbose
// mode adds columns that are only useful when debugging the scheduler.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/concave-dev/sluice/cmd/sluicectl/config"
	"github.com/concave-dev/sluice/cmd/sluicectl/utils"
	"github.com/concave-dev/sluice/internal/api/handlers"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/simulate"
	"github.com/dustin/go-humanize"
)

// Output is where command output goes. Tests replace it with a buffer.
var Output io.Writer = os.Stdout

// ClassifyResult is one line of classify output.
type ClassifyResult struct {
	Index    int           `json:"index"`
	Sequence string        `json:"sequence"`
	Label    string        `json:"label,omitempty"`
	Error    string        `json:"error,omitempty"`
	Latency  time.Duration `json:"latency"`
}

// ProxyHealth combines the health and readiness answers of one proxy.
type ProxyHealth struct {
	Health *handlers.HealthResponse `json:"health"`
	Ready  *handlers.ReadyResponse  `json:"ready"`
}

func writeJSON(v any) {
	encoder := json.NewEncoder(Output)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logging.Error("Failed to encode JSON: %v", err)
		fmt.Fprintln(Output, "Error encoding JSON output")
	}
}

// DisplayClassifyResults prints one row per sequence in input order.
func DisplayClassifyResults(results []ClassifyResult) {
	if config.Global.Output == "json" {
		writeJSON(results)
		return
	}

	if len(results) == 0 {
		fmt.Fprintln(Output, "No sequences to classify")
		return
	}

	w := tabwriter.NewWriter(Output, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if config.Global.Verbose {
		fmt.Fprintln(w, "#\tLENGTH\tRESULT\tLATENCY\tSEQUENCE")
	} else {
		fmt.Fprintln(w, "#\tRESULT\tSEQUENCE")
	}

	for _, r := range results {
		result := r.Label
		if r.Error != "" {
			result = "error: " + r.Error
		}
		seq := truncate(r.Sequence, 48)
		if config.Global.Verbose {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
				r.Index+1, len([]rune(r.Sequence)), result, utils.FormatDuration(r.Latency), seq)
		} else {
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.Index+1, result, seq)
		}
	}
}

// DisplayStats prints scheduler counters followed by the configuration.
func DisplayStats(stats *handlers.StatsResponse) {
	if config.Global.Output == "json" {
		writeJSON(stats)
		return
	}

	s := stats.Scheduler
	c := stats.Config

	w := tabwriter.NewWriter(Output, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "State:\t%s\n", s.State)
	fmt.Fprintf(w, "Queue:\t%s / %s\n", humanize.Comma(int64(s.QueueDepth)), humanize.Comma(int64(s.QueueCapacity)))
	if s.QueueDepth > 0 {
		fmt.Fprintf(w, "Oldest Pending:\t%s\n", utils.FormatDuration(s.OldestPendingAge))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Admitted:\t%s\n", humanize.Comma(int64(s.Admitted)))
	fmt.Fprintf(w, "Rejected:\t%s\n", humanize.Comma(int64(s.Rejected)))
	fmt.Fprintf(w, "Withdrawn:\t%s\n", humanize.Comma(int64(s.Withdrawn)))
	fmt.Fprintf(w, "Completed:\t%s\n", humanize.Comma(int64(s.Completed)))
	fmt.Fprintf(w, "Failed:\t%s\n", humanize.Comma(int64(s.Failed)))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Batches:\t%s (%s failed)\n", humanize.Comma(int64(s.Batches)), humanize.Comma(int64(s.BatchFailures)))
	if s.Batches > 0 {
		fmt.Fprintf(w, "Last Batch:\t%d jobs, %s, %s\n",
			s.LastBatchSize, s.LastBatchReason, utils.FormatDuration(s.LastServiceTime))
		fmt.Fprintf(w, "Avg Batch Size:\t%.2f\n", float64(s.Completed+s.Failed)/float64(s.Batches))
	}

	if !config.Global.Verbose {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Max Batch Size:\t%d\n", c.MaxBatchSize)
	fmt.Fprintf(w, "Max Wait:\t%s\n", c.MaxWait)
	fmt.Fprintf(w, "Max Queue Depth:\t%s\n", humanize.Comma(int64(c.MaxQueueDepth)))
	fmt.Fprintf(w, "Backend Timeout:\t%s\n", c.BackendTimeout)
	fmt.Fprintf(w, "Similarity:\tratio %.2f, min spread %d\n", c.SimilarityRatio, c.MinSpread)
	if c.Linger > 0 {
		fmt.Fprintf(w, "Linger:\t%s for lengths >= %d\n", c.Linger, c.LargeLength)
	} else {
		fmt.Fprintf(w, "Linger:\tdisabled\n")
	}
}

// DisplayHealth prints liveness and readiness of the proxy.
func DisplayHealth(h ProxyHealth) {
	if config.Global.Output == "json" {
		writeJSON(h)
		return
	}

	w := tabwriter.NewWriter(Output, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if h.Health != nil {
		fmt.Fprintf(w, "Status:\t%s\n", h.Health.Status)
		fmt.Fprintf(w, "Version:\t%s\n", h.Health.Version)
		fmt.Fprintf(w, "Uptime:\t%s\n", h.Health.Uptime)
		if config.Global.Verbose {
			fmt.Fprintf(w, "Checked:\t%s\n", humanize.Time(h.Health.Timestamp))
		}
	}
	if h.Ready != nil {
		ready := "yes"
		if !h.Ready.Ready {
			ready = "no (queue full)"
		}
		fmt.Fprintf(w, "Ready:\t%s\n", ready)
		fmt.Fprintf(w, "Scheduler:\t%s, %d/%d queued\n", h.Ready.State, h.Ready.QueueDepth, h.Ready.QueueCapacity)
	}
}

// DisplaySimulationReport prints one row per client and a total row.
func DisplaySimulationReport(report *simulate.Report) {
	if config.Global.Output == "json" {
		writeJSON(report)
		return
	}

	w := tabwriter.NewWriter(Output, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "CLIENT\tREQUESTS\tOK\tFAILED\tSUCCESS\tP50\tP95\tMAX\tELAPSED")
	for _, c := range report.Clients {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			c.Name, c.Requests, c.Successes, c.Failures, utils.Percent(c.Successes, c.Requests),
			utils.FormatDuration(c.P50), utils.FormatDuration(c.P95), utils.FormatDuration(c.Max),
			utils.FormatDuration(c.Elapsed))
	}
	fmt.Fprintf(w, "total\t%d\t%d\t%d\t%s\t\t\t\t%s\n",
		report.Requests, report.Successes, report.Failures,
		utils.Percent(report.Successes, report.Requests), utils.FormatDuration(report.Elapsed))

	if !config.Global.Verbose && report.Failures == 0 {
		return
	}

	fmt.Fprintln(w)
	for _, c := range report.Clients {
		if len(c.Labels) > 0 {
			fmt.Fprintf(w, "%s labels:\t%s\n", c.Name, formatCounts(c.Labels))
		}
		if len(c.Errors) > 0 {
			fmt.Fprintf(w, "%s errors:\t%s\n", c.Name, formatCounts(c.Errors))
		}
	}
}

// formatCounts renders a count map as "k=v" pairs in key order.
func formatCounts(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
