package db

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	types "github.com/docuflow/lifecycle-backend/internal/domain"
)

// SeedState is one lifecycle state as declared in a seed file or the built-in
// defaults. Name is the upsert key.
type SeedState struct {
	Name        string `yaml:"name"`
	Label       string `yaml:"label"`
	Color       string `yaml:"color"`
	Order       int    `yaml:"order"`
	Description string `yaml:"description"`
	IsInitial   bool   `yaml:"is_initial"`
	IsFinal     bool   `yaml:"is_final"`
}

// DefaultStates is the stock editorial workflow: draft through published, with
// rejected as the off-ramp. Labels match the original deployment's locale.
func DefaultStates() []SeedState {
	return []SeedState{
		{Name: "draft", Label: "Brouillon", Color: "#6B7280", Order: 1, IsInitial: true, Description: "Document en cours de rédaction"},
		{Name: "submitted", Label: "Soumis", Color: "#3B82F6", Order: 2, Description: "Document soumis pour révision"},
		{Name: "review", Label: "En révision", Color: "#F59E0B", Order: 3, Description: "Document en cours de révision"},
		{Name: "validated", Label: "Validé", Color: "#10B981", Order: 4, Description: "Document validé"},
		{Name: "published", Label: "Publié", Color: "#8B5CF6", Order: 5, IsFinal: true, Description: "Document publié"},
		{Name: "rejected", Label: "Rejeté", Color: "#EF4444", Order: 6, Description: "Document rejeté"},
	}
}

// LoadSeedStates reads a YAML state list from path, falling back to
// DefaultStates when path is empty.
func LoadSeedStates(path string) ([]SeedState, error) {
	if path == "" {
		return DefaultStates(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state seed file: %w", err)
	}
	var doc struct {
		States []SeedState `yaml:"states"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse state seed file: %w", err)
	}
	if len(doc.States) == 0 {
		return nil, fmt.Errorf("state seed file %s declares no states", path)
	}
	return doc.States, nil
}

// ToState converts a seed declaration into a registry row.
func (s SeedState) ToState() *types.State {
	return &types.State{
		Name:        s.Name,
		Label:       s.Label,
		Color:       s.Color,
		Order:       s.Order,
		Description: s.Description,
		IsInitial:   s.IsInitial,
		IsFinal:     s.IsFinal,
	}
}
