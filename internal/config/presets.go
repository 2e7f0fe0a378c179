package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sydcare/carerank/internal/model"
)

// builtinPresets are the weight profiles shipped with the binary. A file
// in the presets directory with the same name takes precedence.
var builtinPresets = map[string]model.WeightProfile{
	"balanced": {Name: "Balanced", Location: 0.30, Price: 0.30, Quality: 0.30, Needs: 0.10},
	"budget":   {Name: "Budget", Location: 0.20, Price: 0.50, Quality: 0.20, Needs: 0.10},
	"quality":  {Name: "Quality", Location: 0.20, Price: 0.20, Quality: 0.50, Needs: 0.10},
	"nearby":   {Name: "Nearby", Location: 0.50, Price: 0.20, Quality: 0.20, Needs: 0.10},
}

// LoadPreset resolves a named weight profile: a <name>.yaml or <name>.json
// file under dir wins, then the built-in table.
func LoadPreset(dir, name string) (model.WeightProfile, error) {
	key := strings.ToLower(name)

	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(dir, key+ext)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return model.WeightProfile{}, eris.Wrapf(err, "config: read preset %s", path)
		}
		return parsePreset(path, data, name)
	}

	if w, ok := builtinPresets[key]; ok {
		return w, nil
	}
	return model.WeightProfile{}, eris.Errorf("config: unknown preset %q", name)
}

// PresetNames lists the built-in preset names plus any preset files found
// under dir, sorted.
func PresetNames(dir string) []string {
	seen := map[string]bool{}
	for name := range builtinPresets {
		seen[name] = true
	}
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := filepath.Ext(e.Name())
			switch ext {
			case ".yaml", ".yml", ".json":
				seen[strings.TrimSuffix(e.Name(), ext)] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parsePreset(path string, data []byte, name string) (model.WeightProfile, error) {
	var w model.WeightProfile
	var err error
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &w)
	} else {
		err = yaml.Unmarshal(data, &w)
	}
	if err != nil {
		return model.WeightProfile{}, eris.Wrapf(err, "config: parse preset %s", path)
	}
	if w.Name == "" {
		w.Name = name
	}
	return w, nil
}
