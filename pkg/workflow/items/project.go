package items

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
)

// Item type names as they appear in project documents.
const (
	TypeDataStore      = "data_store"
	TypeDataConnection = "data_connection"
	TypeTool           = "tool"
	TypeView           = "view"
	TypeImporter       = "importer"
	TypeExporter       = "exporter"
)

// ProjectSpec is the JSON document describing a whole project: its items and
// the connections between them.
type ProjectSpec struct {
	Project     ProjectMeta `json:"project"`
	Items       []ItemSpec  `json:"items"`
	Connections [][2]string `json:"connections,omitempty"`
}

// ProjectMeta names the project.
type ProjectMeta struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ItemSpec describes one project item. Which fields apply depends on Type.
type ItemSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`

	URL         string   `json:"url,omitempty"`          // data_store
	References  []string `json:"references,omitempty"`   // data_connection
	Program     string   `json:"program,omitempty"`      // tool
	Args        []string `json:"args,omitempty"`         // tool
	Workdir     string   `json:"workdir,omitempty"`      // tool
	InputFiles  []string `json:"input_files,omitempty"`  // tool
	OutputFiles []string `json:"output_files,omitempty"` // tool
	Pattern     string   `json:"pattern,omitempty"`      // importer
	OutFile     string   `json:"out_file,omitempty"`     // exporter
}

// NewItem builds the concrete item behind one spec. An empty type defaults
// to a view.
func NewItem(spec ItemSpec) (workflow.Item, error) {
	switch spec.Type {
	case TypeDataStore:
		return NewDataStore(spec.Name, spec.URL), nil
	case TypeDataConnection:
		return NewDataConnection(spec.Name, spec.References), nil
	case TypeTool:
		return NewTool(spec.Name, ToolConfig{
			Program:     spec.Program,
			Args:        spec.Args,
			Workdir:     spec.Workdir,
			InputFiles:  spec.InputFiles,
			OutputFiles: spec.OutputFiles,
		}), nil
	case TypeView, "":
		return NewView(spec.Name), nil
	case TypeImporter:
		return NewImporter(spec.Name, spec.Pattern), nil
	case TypeExporter:
		return NewExporter(spec.Name, spec.OutFile), nil
	}
	return nil, fmt.Errorf("unknown item type %q", spec.Type)
}

// LoadProject reads a project document from disk.
func LoadProject(path string) (*ProjectSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}
	var spec ProjectSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse project file: %w", err)
	}
	return &spec, nil
}

// SaveProject writes a project document with stable formatting.
func SaveProject(path string, spec *ProjectSpec) error {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	return nil
}

// Build materializes a project document: a graph store holding one node per
// item plus the connection edges, and a registry resolving names to live
// items.
func Build(spec *ProjectSpec) (*workflow.GraphStore, *Registry, error) {
	store := workflow.NewGraphStore()
	reg := NewRegistry()
	for _, is := range spec.Items {
		if is.Name == "" {
			return nil, nil, fmt.Errorf("project %q: item with empty name", spec.Project.Name)
		}
		item, err := NewItem(is)
		if err != nil {
			return nil, nil, fmt.Errorf("item %q: %w", is.Name, err)
		}
		if err := reg.Register(is.Name, item); err != nil {
			return nil, nil, err
		}
		if err := store.AddNode(is.Name); err != nil {
			return nil, nil, fmt.Errorf("item %q: %w", is.Name, err)
		}
	}
	for _, conn := range spec.Connections {
		if err := store.AddEdge(conn[0], conn[1]); err != nil {
			return nil, nil, fmt.Errorf("connection %s -> %s: %w", conn[0], conn[1], err)
		}
	}
	return store, reg, nil
}
