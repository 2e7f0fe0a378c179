// Package ingest discovers provider documents under the corpus
// directory and produces doc_ingest receipts: one content-hash event
// per file, at a fixed observation timestamp so replays are identical.
package ingest

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sydcare/carerank/internal/evidence"
	"github.com/sydcare/carerank/internal/model"
)

// Options configures a corpus scan.
type Options struct {
	// ObservedAt stamps every receipt; ingest never uses the wall clock.
	ObservedAt string

	// Concurrency bounds parallel hashing; defaults to GOMAXPROCS.
	Concurrency int
}

type corpusFile struct {
	providerID string
	path       string
	rel        string
}

// Receipts walks corpus/<provider_id>/* and returns one doc_ingest
// event per file, ordered by source filename.
func Receipts(corpusDir string, opts Options) ([]model.Event, error) {
	files, err := listCorpus(corpusDir)
	if err != nil {
		return nil, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	events := make([]model.Event, len(files))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, cf := range files {
		g.Go(func() error {
			sha, size, err := evidence.SHA256File(cf.path)
			if err != nil {
				return err
			}
			pid := cf.providerID
			events[i] = model.Event{
				ObservedAt: opts.ObservedAt,
				Kind:       model.KindDocIngest,
				ProviderID: &pid,
				Source:     &model.Source{Filename: cf.rel},
				SHA256:     sha,
				SizeBytes:  size,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("ingest: corpus scan complete",
		zap.String("corpus", corpusDir),
		zap.Int("files", len(events)),
	)
	return events, nil
}

// listCorpus returns every file under a provider directory, sorted by
// provider then filename for a stable scan order.
func listCorpus(corpusDir string) ([]corpusFile, error) {
	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read corpus dir %s", corpusDir)
	}

	var files []corpusFile
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid := e.Name()
		providerDir := filepath.Join(corpusDir, pid)

		docs, err := os.ReadDir(providerDir)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read provider dir %s", providerDir)
		}
		for _, d := range docs {
			if d.IsDir() {
				continue
			}
			files = append(files, corpusFile{
				providerID: pid,
				path:       filepath.Join(providerDir, d.Name()),
				rel:        filepath.ToSlash(filepath.Join("corpus", pid, d.Name())),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	return files, nil
}
