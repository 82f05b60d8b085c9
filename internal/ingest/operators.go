package ingest

import (
	"fmt"
	"os"

	"github.com/UnknownOlympus/cellmap/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultOperators are the French mobile operators of the reference survey.
var DefaultOperators = []models.Operator{
	{ID: 20801, Name: "Orange"},
	{ID: 20810, Name: "SFR"},
	{ID: 20815, Name: "Free"},
	{ID: 20820, Name: "Bouygue"},
}

type operatorsFile struct {
	Operators []models.Operator `yaml:"operators"`
}

// LoadOperators reads operators from a YAML file. An empty path returns DefaultOperators.
func LoadOperators(path string) ([]models.Operator, error) {
	if path == "" {
		return DefaultOperators, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read operators file: %w", err)
	}

	var file operatorsFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode operators file: %w", err)
	}

	seen := make(map[int]bool, len(file.Operators))
	for _, op := range file.Operators {
		if op.ID <= 0 || op.Name == "" {
			return nil, fmt.Errorf("invalid operator entry: %+v", op)
		}
		if seen[op.ID] {
			return nil, fmt.Errorf("duplicate operator id %d", op.ID)
		}
		seen[op.ID] = true
	}
	if len(file.Operators) == 0 {
		return nil, fmt.Errorf("no operators defined in %s", path)
	}

	return file.Operators, nil
}
