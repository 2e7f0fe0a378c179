package registry

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sydcare/carerank/internal/model"
)

// ImportOptions configures a spreadsheet import.
type ImportOptions struct {
	SheetName string // empty: first sheet
}

// Header aliases accepted per field, matched case-insensitively after
// stripping non-alphanumerics. Source datasets vary in column naming.
var headerAliases = map[string][]string{
	"racs":     {"racs code", "racs", "racs id", "racs code – service"},
	"name":     {"provider name", "service name", "name"},
	"address":  {"physical address", "address", "street address"},
	"suburb":   {"suburb", "service suburb", "city", "town"},
	"postcode": {"postal code", "postcode", "zip"},
	"lat":      {"latitude", "lat"},
	"lng":      {"longitude", "long", "lng"},
	"overall":  {"overall star rating", "overall rating"},
	"clinical": {"staffing rating", "clinical star rating", "clinical rating"},
	"comply":   {"compliance rating", "compliance star rating", "compliance rating"},
}

// ImportXLSX reads a provider dataset spreadsheet and converts each row
// with a RACS code into a registry record.
func ImportXLSX(path string, opts ImportOptions) ([]model.Provider, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: open xlsx %s", path)
	}

	sheet, err := pickSheet(f, opts.SheetName)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("registry: sheet %q is empty", sheet.Name)
	}

	header := rowToStrings(sheet.Rows[0])
	cols := resolveColumns(header)
	racsCol, ok := cols["racs"]
	if !ok {
		return nil, eris.Errorf("registry: no RACS column found in %v", header)
	}

	var providers []model.Provider
	for i, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		racs := cellAt(cells, racsCol)
		if strings.TrimSpace(racs) == "" {
			continue
		}

		p := model.Provider{
			ProviderID:     providerID(racs),
			Name:           strAt(cells, cols, "name"),
			Address:        strAt(cells, cols, "address"),
			Suburb:         strAt(cells, cols, "suburb"),
			Postcode:       strAt(cells, cols, "postcode"),
			Lat:            numAt(cells, cols, "lat"),
			Lng:            numAt(cells, cols, "lng"),
			StarOverall:    numAt(cells, cols, "overall"),
			StarClinical:   numAt(cells, cols, "clinical"),
			StarCompliance: numAt(cells, cols, "comply"),
		}
		if p.Lat == nil && strAt(cells, cols, "lat") != "" {
			zap.L().Warn("registry: unparseable latitude",
				zap.Int("row", i+2),
				zap.String("provider_id", p.ProviderID),
			)
		}
		providers = append(providers, p)
	}

	if err := Validate(providers); err != nil {
		return nil, err
	}
	return providers, nil
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name == "" {
		if len(f.Sheets) == 0 {
			return nil, eris.New("registry: workbook has no sheets")
		}
		return f.Sheets[0], nil
	}
	for _, s := range f.Sheets {
		if strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return nil, eris.Errorf("registry: sheet %q not found", name)
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeHeader(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// resolveColumns maps field keys to column indexes by alias matching.
// A "racs" substring match wins when no exact alias is found.
func resolveColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for field, aliases := range headerAliases {
		for _, alias := range aliases {
			want := normalizeHeader(alias)
			for idx, h := range header {
				if normalizeHeader(h) == want {
					if _, done := cols[field]; !done {
						cols[field] = idx
					}
				}
			}
		}
	}
	if _, ok := cols["racs"]; !ok {
		for idx, h := range header {
			if strings.Contains(strings.ToLower(h), "racs") {
				cols["racs"] = idx
				break
			}
		}
	}
	return cols
}

func providerID(racs string) string {
	return "racs_" + nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(racs)), "")
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func strAt(cells []string, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok {
		return ""
	}
	return strings.TrimSpace(cellAt(cells, idx))
}

func numAt(cells []string, cols map[string]int, field string) *float64 {
	idx, ok := cols[field]
	if !ok {
		return nil
	}
	raw := strings.TrimSpace(cellAt(cells, idx))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
