// Package pipeline fans pages out to parallel extraction tasks and writes
// their documents back in input order.
package pipeline

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// Writer receives emitted documents in input order. It is only called from
// a single goroutine.
type Writer interface {
	Write(doc *wikitext.Document) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(doc *wikitext.Document) error

// Write implements Writer.
func (f WriterFunc) Write(doc *wikitext.Document) error { return f(doc) }

// Settings configures a run.
type Settings struct {
	// Workers is the number of extraction goroutines; <= 0 means DefaultWorkers.
	Workers  int
	Options  *wikitext.Options
	Registry wikitext.Registry
	// Compiler overrides the default template compiler when non-nil.
	Compiler wikitext.Compiler
}

// Stats summarizes a run.
type Stats struct {
	Read     int // pages handed to workers
	Emitted  int // documents written
	Filtered int // pages dropped by the disambiguation or length filters
	Failed   int // pages whose extraction panicked

	Diagnostics wikitext.Diagnostics
	Elapsed     time.Duration
}

// Rate is the number of pages read per second.
func (s *Stats) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Read) / s.Elapsed.Seconds()
}

// DefaultWorkers leaves one CPU for reading and writing.
func DefaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

type job struct {
	seq  int
	page wikitext.Page
}

type result struct {
	seq    int
	doc    *wikitext.Document
	diag   wikitext.Diagnostics
	failed bool
}

// Run extracts every page and passes the emitted documents to w in the
// order the pages were produced. The first error from pages or w cancels
// the run and is returned together with the stats gathered so far.
func Run(ctx context.Context, pages iter.Seq2[wikitext.Page, error], set Settings, w Writer) (*Stats, error) {
	workers := set.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	stats := &Stats{}
	start := time.Now()
	log.Info("extraction started", "workers", workers)

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan job, workers*2)
	results := make(chan result, workers*2)

	g.Go(func() error {
		defer close(jobs)
		seq := 0
		for p, err := range pages {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case jobs <- job{seq: seq, page: p}:
				seq++
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				r := extract(j, set)
				select {
				case results <- r:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	// reducer: restore input order through a spool of early results
	g.Go(func() error {
		spool := map[int]result{}
		next := 0
		for r := range results {
			spool[r.seq] = r
			for {
				ready, ok := spool[next]
				if !ok {
					break
				}
				delete(spool, next)
				next++
				if err := stats.add(ready, w); err != nil {
					return err
				}
			}
		}
		return nil
	})

	err := g.Wait()
	stats.Elapsed = time.Since(start)
	log.Info("extraction finished",
		"pages", stats.Read,
		"emitted", stats.Emitted,
		"elapsed", stats.Elapsed.Round(time.Millisecond),
		"rate", fmt.Sprintf("%.2f art/s", stats.Rate()))
	return stats, err
}

func (s *Stats) add(r result, w Writer) error {
	s.Read++
	s.Diagnostics.Merge(&r.diag)
	switch {
	case r.failed:
		s.Failed++
	case r.doc == nil:
		s.Filtered++
	default:
		if err := w.Write(r.doc); err != nil {
			return fmt.Errorf("failed to write document %s: %w", r.doc.ID, err)
		}
		s.Emitted++
	}
	return nil
}

// extract runs one task. A panic inside the engine drops the page instead
// of the whole run.
func extract(j job, set Settings) (r result) {
	r.seq = j.seq
	defer func() {
		if p := recover(); p != nil {
			log.Error("extraction failed", "id", j.page.ID, "title", j.page.Title, "panic", p)
			r.doc = nil
			r.failed = true
		}
	}()

	x := wikitext.NewExtractor(j.page, set.Options, set.Registry)
	if set.Compiler != nil {
		x.WithCompiler(set.Compiler)
	}
	r.doc, _ = x.Extract()
	r.diag = *x.Diagnostics()
	return r
}
