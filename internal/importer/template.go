package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/domain/supplier"
)

// LoadTemplate decodes a YAML import template:
//
//	column_map:
//	  Maker: brand
//	  Price (USD): ask_price_usd
//	availability_map:
//	  Y: in_stock
//	default_availability: unknown
func LoadTemplate(r io.Reader) (supplier.ImportTemplate, error) {
	var t supplier.ImportTemplate
	if err := yaml.NewDecoder(r).Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return supplier.ImportTemplate{}, fmt.Errorf("failed to decode import template: %w", err)
	}
	var errs shared.ValidationErrors
	t.Validate(&errs)
	if err := errs.Err(); err != nil {
		return supplier.ImportTemplate{}, err
	}
	return t, nil
}

func normaliseHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

// columnIndex resolves each target field to a sheet column. Explicit template
// entries win; any remaining field is matched to a header with the same
// name, ignoring case and spacing.
func columnIndex(headers []string, t supplier.ImportTemplate) map[string]int {
	mapped := make(map[string]string, len(t.ColumnMap))
	for source, target := range t.ColumnMap {
		mapped[strings.ToLower(strings.TrimSpace(source))] = target
	}

	index := map[string]int{}
	for i, h := range headers {
		target, ok := mapped[strings.ToLower(h)]
		if !ok {
			continue
		}
		if _, taken := index[target]; !taken {
			index[target] = i
		}
	}
	for i, h := range headers {
		name := normaliseHeader(h)
		if _, explicit := mapped[strings.ToLower(h)]; explicit {
			continue
		}
		for _, field := range supplier.TargetFields {
			if name != field {
				continue
			}
			if _, taken := index[field]; !taken {
				index[field] = i
			}
		}
	}
	return index
}
