package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mpetrov/trialgate/internal/model"
)

// Assessor runs one protocol assessment. Implemented by pipeline.Pipeline.
type Assessor interface {
	AssessFile(ctx context.Context, path string) (*model.Assessment, error)
}

// AssessJob assesses one protocol file.
type AssessJob struct {
	Path     string
	Assessor Assessor
}

// Execute runs the assessment.
func (j *AssessJob) Execute(ctx context.Context) Result {
	assessment, err := j.Assessor.AssessFile(ctx, j.Path)
	return &AssessResult{
		Path:       j.Path,
		Assessment: assessment,
		Err:        err,
	}
}

// AssessResult is the outcome of one batch assessment.
type AssessResult struct {
	Path       string
	Assessment *model.Assessment
	Err        error
}

// GetError returns the job error, if any.
func (r *AssessResult) GetError() error { return r.Err }

// BatchProcessor assesses many protocol files concurrently. One failing
// file never aborts the batch.
type BatchProcessor struct {
	assessor    Assessor
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(assessor Assessor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		assessor:    assessor,
		concurrency: concurrency,
	}
}

// ProcessFiles assesses the given protocol files through the worker pool.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*AssessResult {
	if len(paths) == 0 {
		return []*AssessResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Submissions run concurrently with collection so a full queue can
	// never stall against a full results buffer.
	go func() {
		for _, path := range paths {
			pool.Submit(&AssessJob{Path: path, Assessor: b.assessor})
		}
		pool.Close()
	}()

	results := pool.Results()

	out := make([]*AssessResult, len(results))
	for i, r := range results {
		out[i] = r.(*AssessResult)
	}
	return out
}

// CollectProtocolFiles resolves a batch input into protocol file paths.
// A directory yields its *.json files in sorted order; a .json file is a
// single protocol; any other file is read as a list of paths, one per line,
// with blank lines and # comments skipped.
func CollectProtocolFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		entries, err := filepath.Glob(filepath.Join(path, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", path, err)
		}
		sort.Strings(entries)
		return entries, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return []string{path}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list file: %w", err)
	}
	return paths, nil
}
