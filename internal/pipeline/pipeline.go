// Package pipeline runs one enrichment batch: expand input globs, parse
// every conversation, enrich in parallel, and export the interchange
// dataset. File and record failures are logged and skipped; only export
// failures abort the run.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vcon-insights/internal/dataset"
	"vcon-insights/internal/enrich"
	"vcon-insights/internal/lexicon"
	"vcon-insights/internal/logger"
	"vcon-insights/internal/types"
	"vcon-insights/internal/vcon"
)

// Options configures one run. Inputs are file paths or glob patterns;
// OutputPath chooses the interchange format by extension.
type Options struct {
	Inputs     []string
	OutputPath string
	ExtraXLSX  string
	Workers    int
	Lexicon    *lexicon.Lexicon
	BrandToken string
	OrgKeyword string
}

// Run executes the batch and returns its summary. The run succeeds when at
// least one record was written; anything less is an error.
func Run(opts Options) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := logger.New().WithField("component", "pipeline").WithField("run_id", runID)

	lex := opts.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	files, err := expandInputs(opts.Inputs)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched %v", opts.Inputs)
	}
	log.WithField("files", len(files)).Info("starting enrichment run")

	parser := vcon.NewParser(lex, vcon.NewResolver(opts.BrandToken, opts.OrgKeyword))

	var details []types.CallDetails
	filesFailed := 0
	recordsSkipped := 0
	for _, path := range files {
		raws, err := parser.LoadFile(path)
		if err != nil {
			log.WithError(err).WithField("file", path).Error("file load failed, skipping")
			filesFailed++
			continue
		}
		for _, raw := range raws {
			conv, err := parser.Parse(raw)
			if err != nil {
				log.WithError(err).WithField("file", path).Warn("conversation skipped")
				recordsSkipped++
				continue
			}
			details = append(details, parser.CallDetails(&conv))
		}
	}

	// Enrichment is pure per conversation; results land by index so row
	// order stays the parse order regardless of worker scheduling.
	records := make([]types.EnrichedRecord, len(details))
	enricher := enrich.New(lex)
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range details {
		i := i
		g.Go(func() error {
			records[i] = enricher.Enrich(details[i])
			return nil
		})
	}
	_ = g.Wait()

	if len(records) == 0 {
		return nil, fmt.Errorf("no records produced from %d input file(s)", len(files))
	}

	if dir := filepath.Dir(opts.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	// Single-writer discipline on the output path.
	lock := flock.New(opts.OutputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another enrichment run is writing %s", opts.OutputPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.WithError(err).Warn("release output lock failed")
		}
	}()

	ds := dataset.Assemble(records)
	if err := ds.Write(opts.OutputPath); err != nil {
		return nil, fmt.Errorf("export dataset: %w", err)
	}
	if opts.ExtraXLSX != "" {
		if err := ds.Write(opts.ExtraXLSX); err != nil {
			return nil, fmt.Errorf("export workbook: %w", err)
		}
	}

	summary := Summarize(records)
	summary.RunID = runID
	summary.OutputPath = opts.OutputPath
	summary.FilesScanned = len(files)
	summary.FilesFailed = filesFailed
	summary.RecordsSkipped = recordsSkipped
	summary.DurationMs = time.Since(start).Milliseconds()

	log.WithField("records", len(records)).
		WithField("files_failed", filesFailed).
		WithField("records_skipped", recordsSkipped).
		WithField("duration_ms", summary.DurationMs).
		Info("enrichment run complete")
	return summary, nil
}

// expandInputs globs every pattern and returns the deduplicated, sorted
// union. A pattern matching nothing contributes nothing; only a malformed
// pattern is an error.
func expandInputs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad input pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}
