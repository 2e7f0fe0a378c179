// Package evidence implements the append-only evidence store: one
// NDJSON line per event or assertion, files rewritten in sorted order
// through an atomic rename so a crashed writer never leaves a torn file.
package evidence

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/canonjson"
	"github.com/sydcare/carerank/internal/model"
)

// Store reads and appends evidence events and assertions. It assumes a
// single writer per run; concurrent runs are serialized by the atomic
// rename on write.
type Store struct {
	EventsPath     string
	AssertionsPath string
}

// NewStore returns a store over the given NDJSON file paths.
func NewStore(eventsPath, assertionsPath string) *Store {
	return &Store{EventsPath: eventsPath, AssertionsPath: assertionsPath}
}

// LoadEvents reads all events. Lines that are not valid JSON are skipped
// with a warning: evidence is advisory context, not gating input.
func (s *Store) LoadEvents() ([]model.Event, error) {
	lines, err := readLines(s.EventsPath)
	if err != nil {
		return nil, err
	}

	var events []model.Event
	for i, line := range lines {
		var evt model.Event
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			zap.L().Warn("evidence: skipping corrupt event line",
				zap.String("path", s.EventsPath),
				zap.Int("line", i+1),
				zap.Error(err),
			)
			continue
		}
		events = append(events, evt)
	}
	return events, nil
}

// LoadAssertions reads all assertions, skipping corrupt lines with a warning.
func (s *Store) LoadAssertions() ([]model.Assertion, error) {
	lines, err := readLines(s.AssertionsPath)
	if err != nil {
		return nil, err
	}

	var asserts []model.Assertion
	for i, line := range lines {
		var a model.Assertion
		if err := json.Unmarshal([]byte(line), &a); err != nil {
			zap.L().Warn("evidence: skipping corrupt assertion line",
				zap.String("path", s.AssertionsPath),
				zap.Int("line", i+1),
				zap.Error(err),
			)
			continue
		}
		if a.ProviderID == "" {
			zap.L().Warn("evidence: skipping assertion without provider_id",
				zap.Int("line", i+1))
			continue
		}
		asserts = append(asserts, a)
	}
	return asserts, nil
}

// AppendEvents adds events to the store. Existing lines are preserved
// verbatim; the whole file is rewritten lexicographically sorted via a
// temp file and rename, keeping the layout deterministic.
func (s *Store) AppendEvents(events ...model.Event) error {
	lines, err := readLines(s.EventsPath)
	if err != nil {
		return err
	}
	for _, evt := range events {
		b, err := canonjson.Marshal(evt)
		if err != nil {
			return eris.Wrap(err, "evidence: encode event")
		}
		lines = append(lines, string(b))
	}
	return writeLines(s.EventsPath, lines)
}

// ReplaceEvents rewrites the event file from scratch with the given
// events in sorted line order.
func (s *Store) ReplaceEvents(events []model.Event) error {
	lines := make([]string, 0, len(events))
	for _, evt := range events {
		b, err := canonjson.Marshal(evt)
		if err != nil {
			return eris.Wrap(err, "evidence: encode event")
		}
		lines = append(lines, string(b))
	}
	return writeLines(s.EventsPath, lines)
}

// AppendAssertions adds assertions to the store, same layout rules as events.
func (s *Store) AppendAssertions(asserts ...model.Assertion) error {
	lines, err := readLines(s.AssertionsPath)
	if err != nil {
		return err
	}
	for _, a := range asserts {
		b, err := canonjson.Marshal(a)
		if err != nil {
			return eris.Wrap(err, "evidence: encode assertion")
		}
		lines = append(lines, string(b))
	}
	return writeLines(s.AssertionsPath, lines)
}

// ByProvider groups events by provider id; events without one are dropped.
func ByProvider(events []model.Event) map[string][]model.Event {
	out := make(map[string][]model.Event)
	for _, evt := range events {
		if evt.ProviderID == nil || *evt.ProviderID == "" {
			continue
		}
		out[*evt.ProviderID] = append(out[*evt.ProviderID], evt)
	}
	return out
}

// LatestObserved returns the maximum observed_at across events, or
// fallback when no event carries one. ISO-8601 UTC strings order
// correctly under plain string comparison.
func LatestObserved(events []model.Event, fallback string) string {
	latest := ""
	for _, evt := range events {
		if evt.ObservedAt > latest {
			latest = evt.ObservedAt
		}
	}
	if latest == "" {
		return fallback
	}
	return latest
}

// SHA256File returns the hex sha256 of a file's contents and its size.
func SHA256File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, eris.Wrapf(err, "evidence: open %s", path)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, eris.Wrapf(err, "evidence: hash %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// SHA256Bytes returns the hex sha256 of the given bytes.
func SHA256Bytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "evidence: open %s", path)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "evidence: read %s", path)
	}
	return lines, nil
}

func writeLines(path string, lines []string) error {
	sort.Strings(lines)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "evidence: mkdir %s", filepath.Dir(path))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrap(err, "evidence: create temp file")
	}
	defer os.Remove(tmp.Name())

	for _, line := range lines {
		if _, err := fmt.Fprintln(tmp, line); err != nil {
			tmp.Close()
			return eris.Wrap(err, "evidence: write temp file")
		}
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "evidence: close temp file")
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "evidence: rename into %s", path)
	}
	return nil
}
