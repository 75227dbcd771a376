// Package ingest loads text files from disk into the knowledge base.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/heartmarshall/myenglish-adapter/internal/service/knowledge"
)

// Ingester stores one document in the knowledge base.
type Ingester interface {
	Ingest(ctx context.Context, doc knowledge.Document) (knowledge.IngestResult, error)
}

// FileResult holds the outcome of a single file.
type FileResult struct {
	Path     string
	Chunks   int
	Stored   int
	Skipped  int
	Duration time.Duration
	Err      error
}

// Pipeline walks the configured paths and ingests every matching file.
type Pipeline struct {
	log     *slog.Logger
	ingest  Ingester
	cfg     Config
	results []FileResult
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, ingest Ingester, cfg Config) *Pipeline {
	return &Pipeline{
		log:    log.With("service", "ingest"),
		ingest: ingest,
		cfg:    cfg,
	}
}

// Results returns per-file results after Run completes.
func (p *Pipeline) Results() []FileResult {
	return p.results
}

// HasErrors returns true if any file failed.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Run ingests the files found under the configured paths. A failing file
// is recorded and does not stop the run; context cancellation does.
func (p *Pipeline) Run(ctx context.Context) error {
	files, err := p.Collect()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no matching files found")
	}
	p.log.Info("files collected", slog.Int("count", len(files)), slog.Bool("dry_run", p.cfg.DryRun))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		res := p.ingestFile(ctx, path)
		res.Duration = time.Since(start)
		p.results = append(p.results, res)

		if res.Err != nil {
			p.log.Error("file failed", slog.String("path", path), slog.String("error", res.Err.Error()))
			continue
		}
		p.log.Info("file ingested",
			slog.String("path", path),
			slog.Int("chunks", res.Chunks),
			slog.Int("stored", res.Stored),
			slog.Int("skipped", res.Skipped),
			slog.Duration("duration", res.Duration),
		)
	}
	return nil
}

func (p *Pipeline) ingestFile(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path}

	text, err := readText(path, p.cfg.MaxBytes)
	if err != nil {
		res.Err = err
		return res
	}

	source := p.cfg.Source
	if source == "" {
		source = filepath.Base(path)
	}

	if p.cfg.DryRun {
		res.Chunks = len(knowledge.Split(text, p.cfg.ChunkSize, p.cfg.ChunkOverlap))
		return res
	}

	out, err := p.ingest.Ingest(ctx, knowledge.Document{Source: source, Text: text})
	res.Chunks, res.Stored, res.Skipped = out.Chunks, out.Stored, out.Skipped
	res.Err = err
	return res
}

// Collect expands the configured paths into a sorted, de-duplicated list of
// files with an accepted extension, truncated to LimitFiles when set.
func (p *Pipeline) Collect() ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !p.accepts(path) || seen[path] {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, root := range p.cfg.Paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}

		var dirFiles []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				dirFiles = append(dirFiles, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
		slices.Sort(dirFiles)
		for _, f := range dirFiles {
			add(f)
		}
	}

	if p.cfg.LimitFiles > 0 && len(files) > p.cfg.LimitFiles {
		files = files[:p.cfg.LimitFiles]
	}
	return files, nil
}

func (p *Pipeline) accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(p.cfg.Extensions, ext)
}

func readText(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("file exceeds %d bytes", maxBytes)
	}
	return string(data), nil
}
