package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/kurva/internal/domain"
)

// ImportSchema is the top-level structure of a project import file. Files
// ending in .yaml or .yml are read as YAML, everything else as JSON.
type ImportSchema struct {
	Project     ProjectImport      `json:"project" yaml:"project"`
	Generate    *GenerateImport    `json:"generate,omitempty" yaml:"generate,omitempty"`
	Phases      []PhaseImport      `json:"phases,omitempty" yaml:"phases,omitempty"`
	Nodes       []NodeImport       `json:"nodes" yaml:"nodes"`
	Assignments []AssignmentImport `json:"assignments,omitempty" yaml:"assignments,omitempty"`
}

// ProjectImport defines the project-level fields in the import file.
type ProjectImport struct {
	ShortID      string  `json:"short_id" yaml:"short_id"`
	Name         string  `json:"name" yaml:"name"`
	StartDate    string  `json:"start_date" yaml:"start_date"`
	EndDate      *string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	WeekEndDay   string  `json:"week_end_day,omitempty" yaml:"week_end_day,omitempty"`
	DefaultScale string  `json:"default_scale,omitempty" yaml:"default_scale,omitempty"`
}

// GenerateImport asks for phases to be generated over the project range.
type GenerateImport struct {
	Scale string `json:"scale" yaml:"scale"`
}

// PhaseImport defines a manual phase.
type PhaseImport struct {
	Ref       string  `json:"ref" yaml:"ref"`
	Name      string  `json:"name" yaml:"name"`
	StartDate *string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// NodeImport defines a node of the work tree. Parents must appear before
// their children.
type NodeImport struct {
	Ref       string   `json:"ref" yaml:"ref"`
	ParentRef *string  `json:"parent_ref,omitempty" yaml:"parent_ref,omitempty"`
	Kind      string   `json:"kind" yaml:"kind"`
	Name      string   `json:"name" yaml:"name"`
	Volume    *float64 `json:"volume,omitempty" yaml:"volume,omitempty"`
	Satuan    string   `json:"satuan,omitempty" yaml:"satuan,omitempty"`
	Order     *int     `json:"order,omitempty" yaml:"order,omitempty"`
}

// AssignmentImport sets a pekerjaan's proportion in one phase. PhaseRef names
// a manual phase; Phase is the 1-based order of a generated phase.
type AssignmentImport struct {
	NodeRef    string     `json:"node_ref" yaml:"node_ref"`
	PhaseRef   string     `json:"phase_ref,omitempty" yaml:"phase_ref,omitempty"`
	Phase      int        `json:"phase,omitempty" yaml:"phase,omitempty"`
	Proportion Proportion `json:"proportion" yaml:"proportion"`
}

// Proportion accepts a number or a string such as "12,5" or "40%".
// Unparseable values become 0.
type Proportion float64

func (p *Proportion) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Proportion(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("proportion must be a number or string: %w", err)
	}
	*p = Proportion(domain.ParseProportion(s))
	return nil
}

func (p *Proportion) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: proportion must be a scalar", node.Line)
	}
	*p = Proportion(domain.ParseProportion(node.Value))
	return nil
}

// LoadImportSchema reads and parses a project import file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON decodes an import document.
func ParseJSON(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}

// ParseYAML decodes an import document.
func ParseYAML(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
