// Package registry loads and maintains the provider registry: an
// ordered JSON array of provider records, read once per run.
package registry

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sydcare/carerank/internal/model"
)

// Load reads the registry file. Both a bare array and an object with a
// "providers" key are accepted. Shape problems are fatal: the engine
// never scores a partial or malformed registry.
func Load(path string) ([]model.Provider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read %s", path)
	}

	var providers []model.Provider
	if err := json.Unmarshal(raw, &providers); err != nil {
		var wrapped struct {
			Providers []model.Provider `json:"providers"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil || wrapped.Providers == nil {
			return nil, eris.Wrapf(err, "registry: parse %s", path)
		}
		providers = wrapped.Providers
	}

	if err := Validate(providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// Validate checks the registry invariants: every record carries a
// provider_id and ids are unique.
func Validate(providers []model.Provider) error {
	seen := make(map[string]struct{}, len(providers))
	for i, p := range providers {
		if p.ProviderID == "" {
			return eris.Errorf("registry: record %d has no provider_id", i)
		}
		if _, dup := seen[p.ProviderID]; dup {
			return eris.Errorf("registry: duplicate provider_id %s", p.ProviderID)
		}
		seen[p.ProviderID] = struct{}{}
	}
	return nil
}

// Save writes the registry as indented JSON with a trailing newline.
func Save(path string, providers []model.Provider) error {
	b, err := json.MarshalIndent(providers, "", "  ")
	if err != nil {
		return eris.Wrap(err, "registry: marshal")
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "registry: write %s", path)
	}
	return nil
}

// Sync adds a bare registry entry for every corpus directory that has
// none yet, and returns how many were added.
func Sync(registryPath, corpusDir string) (int, error) {
	providers, err := Load(registryPath)
	if err != nil {
		return 0, err
	}

	have := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		have[p.ProviderID] = struct{}{}
	}

	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return 0, eris.Wrapf(err, "registry: read corpus dir %s", corpusDir)
	}

	var missing []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, ok := have[e.Name()]; !ok {
			missing = append(missing, e.Name())
		}
	}
	sort.Strings(missing)

	for _, pid := range missing {
		providers = append(providers, model.Provider{ProviderID: pid})
	}

	if len(missing) > 0 {
		if err := Save(registryPath, providers); err != nil {
			return 0, err
		}
	}
	return len(missing), nil
}
