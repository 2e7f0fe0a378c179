package ranker

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sydcare/carerank/internal/canonjson"
	"github.com/sydcare/carerank/internal/evidence"
	"github.com/sydcare/carerank/internal/model"
)

// Encode serializes a ranking result as canonical JSON.
func Encode(res *model.RankingResult) ([]byte, error) {
	return canonjson.Marshal(res)
}

// WriteResult writes the canonical encoding of res to path and returns
// the content hash and byte size of the written file.
func WriteResult(path string, res *model.RankingResult) (string, int64, error) {
	b, err := Encode(res)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", 0, eris.Wrapf(err, "ranker: mkdir %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", 0, eris.Wrapf(err, "ranker: write %s", path)
	}
	return evidence.SHA256Bytes(b), int64(len(b)), nil
}

// ScoreRunEvent builds the evidence event recording a produced ranking:
// its timestamp matches the result's generated_at, never the wall clock.
func ScoreRunEvent(res *model.RankingResult, filename, sha string, size int64) model.Event {
	return model.Event{
		ObservedAt: res.GeneratedAt,
		Kind:       model.KindScoreRun,
		ProviderID: nil,
		Source:     &model.Source{Filename: filename},
		SHA256:     sha,
		SizeBytes:  size,
	}
}
