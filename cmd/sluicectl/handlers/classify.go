package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/concave-dev/sluice/cmd/sluicectl/client"
	"github.com/concave-dev/sluice/cmd/sluicectl/config"
	"github.com/concave-dev/sluice/cmd/sluicectl/display"
	"github.com/concave-dev/sluice/cmd/sluicectl/utils"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/simulate"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// HandleClassify classifies every sequence from the arguments or --file.
// Individual failures are shown per row; the command fails only if every
// request failed.
func HandleClassify(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	sequences, err := collectSequences(args, config.Classify.File, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(sequences) == 0 {
		return fmt.Errorf("no sequences given - pass them as arguments or use --file")
	}

	logging.Info("Classifying %d sequences via %s", len(sequences), config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	results := classifyAll(cmd.Context(), apiClient, sequences, config.Classify.Concurrency)

	display.DisplayClassifyResults(results)

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d requests failed", failed)
	}
	logging.Success("Classified %d sequences (%d failed)", len(results)-failed, failed)
	return nil
}

// classifyAll sends every sequence with at most limit requests in flight
// and returns results in input order.
func classifyAll(ctx context.Context, s simulate.Submitter, sequences []string, limit int) []display.ClassifyResult {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]display.ClassifyResult, len(sequences))

	var g errgroup.Group
	g.SetLimit(max(limit, 1))
	for i, seq := range sequences {
		g.Go(func() error {
			start := time.Now()
			label, err := s.Classify(ctx, seq)
			results[i] = display.ClassifyResult{
				Index:    i,
				Sequence: seq,
				Label:    label,
				Latency:  time.Since(start),
			}
			if err != nil {
				results[i].Error = err.Error()
				logging.Debug("Sequence %d failed: %v", i, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// collectSequences returns args, or the lines of file when set. A file of
// "-" reads stdin. Blank lines are skipped.
func collectSequences(args []string, file string, stdin io.Reader) ([]string, error) {
	if file == "" {
		return args, nil
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("cannot combine sequence arguments with --file")
	}

	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file, err)
		}
		defer f.Close()
		r = f
	}

	var sequences []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		sequences = append(sequences, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sequences: %w", err)
	}
	return sequences, nil
}
