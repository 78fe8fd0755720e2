package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadCardsCSV converts a spreadsheet export into card definitions. List
// columns (keywords, effects) separate entries with "|". Rows are validated
// the same way catalog files are.
func ReadCardsCSV(r io.Reader) ([]CardDef, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV has no data rows")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range []string{"id", "kind", "cost"} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("CSV is missing column %q", col)
		}
	}
	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	number := func(record []string, col string, row int) (int, error) {
		s := field(record, col)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("row %d: %s %q is not a number", row, col, s)
		}
		return n, nil
	}

	defs := make([]CardDef, 0, len(records)-1)
	for i, record := range records[1:] {
		row := i + 2
		def := CardDef{
			ID:       field(record, "id"),
			Name:     field(record, "name"),
			Kind:     strings.ToLower(field(record, "kind")),
			Keywords: splitList(field(record, "keywords")),
			Effects:  splitList(field(record, "effects")),
		}
		for col, dst := range map[string]*int{
			"cost":     &def.Cost,
			"attack":   &def.Attack,
			"health":   &def.Health,
			"value":    &def.Value,
			"duration": &def.Duration,
		} {
			n, err := number(record, col, row)
			if err != nil {
				return nil, err
			}
			*dst = n
		}
		if _, err := def.card(def.ID); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MarshalCatalog renders definitions as a catalog file, rejecting anything
// ParseCatalog would reject.
func MarshalCatalog(defs []CardDef) ([]byte, error) {
	data, err := yaml.Marshal(Catalog{Cards: defs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	if _, err := ParseCatalog(data); err != nil {
		return nil, err
	}
	return data, nil
}
