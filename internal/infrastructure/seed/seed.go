// Package seed holds the default reading-type catalogue written by init-db.
package seed

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
)

//go:embed reading_types.yaml
var readingTypesYAML []byte

type catalogue struct {
	ReadingTypes []readingTypeEntry `yaml:"reading_types"`
}

type readingTypeEntry struct {
	Slug         string   `yaml:"slug"`
	Name         string   `yaml:"name"`
	Unit         string   `yaml:"unit"`
	Low          *float64 `yaml:"low"`
	High         *float64 `yaml:"high"`
	Inactive     bool     `yaml:"inactive"`
	DisplayOrder int      `yaml:"display_order"`
}

// ReadingTypes returns the embedded catalogue.
func ReadingTypes() ([]pool.ReadingType, error) {
	return parseReadingTypes(readingTypesYAML)
}

func parseReadingTypes(raw []byte) ([]pool.ReadingType, error) {
	var doc catalogue
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errs.Wrap(err, "decode reading type catalogue")
	}

	seen := make(map[string]struct{}, len(doc.ReadingTypes))
	out := make([]pool.ReadingType, 0, len(doc.ReadingTypes))
	for _, entry := range doc.ReadingTypes {
		slug := strings.TrimSpace(entry.Slug)
		if slug == "" {
			return nil, pool.ErrSlugRequired
		}
		if _, dup := seen[slug]; dup {
			return nil, errs.Invalid("reading type %q listed twice", slug)
		}
		seen[slug] = struct{}{}

		out = append(out, pool.ReadingType{
			Slug:         slug,
			Name:         entry.Name,
			Unit:         entry.Unit,
			Low:          entry.Low,
			High:         entry.High,
			IsActive:     !entry.Inactive,
			DisplayOrder: entry.DisplayOrder,
		})
	}
	return out, nil
}
