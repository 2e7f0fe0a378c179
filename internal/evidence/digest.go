package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Digest is a per-day rollup of the event log: line count plus a
// combined hash over the sorted lines. It summarizes the store without
// affecting scoring.
type Digest struct {
	Date         string `json:"date"`
	EventsCount  int    `json:"events_count"`
	InputsDigest string `json:"inputs_digest"`
}

// BuildDigest rolls the event file up into a Digest. The date comes from
// the latest observed_at (or fallbackEpoch when the log is empty). A nil
// return means there is nothing to digest.
func (s *Store) BuildDigest(fallbackEpoch string) (*Digest, error) {
	lines, err := readLines(s.EventsPath)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}

	events, err := s.LoadEvents()
	if err != nil {
		return nil, err
	}
	latest := LatestObserved(events, fallbackEpoch)
	date, _, _ := strings.Cut(latest, "T")

	sorted := append([]string(nil), lines...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, line := range sorted {
		h.Write([]byte(line + "\n"))
	}

	return &Digest{
		Date:         date,
		EventsCount:  len(lines),
		InputsDigest: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
