package items

import (
	"strings"

	"github.com/ravi-parthasarathy/loom/pkg/workflow"
)

// FromDOT converts a DOT sketch of a workflow into a project document. Node
// attributes carry the item configuration; nodes without a type attribute,
// and edge endpoints never declared as nodes, become views.
func FromDOT(src string) (*ProjectSpec, error) {
	name, nodes, edges, err := workflow.ParseDOT(src)
	if err != nil {
		return nil, err
	}
	spec := &ProjectSpec{Project: ProjectMeta{Name: name}}
	declared := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		spec.Items = append(spec.Items, itemSpecFromAttrs(n.ID, n.Attrs))
		declared[n.ID] = true
	}
	for _, e := range edges {
		for _, id := range []string{e.Src, e.Dst} {
			if !declared[id] {
				declared[id] = true
				spec.Items = append(spec.Items, ItemSpec{Name: id, Type: TypeView})
			}
		}
		spec.Connections = append(spec.Connections, [2]string{e.Src, e.Dst})
	}
	return spec, nil
}

func itemSpecFromAttrs(id string, attrs map[string]string) ItemSpec {
	is := ItemSpec{Name: id, Type: attrs["type"]}
	if is.Type == "" {
		is.Type = TypeView
	}
	is.URL = attrs["url"]
	if refs := attrs["references"]; refs != "" {
		is.References = splitList(refs)
	}
	is.Program = attrs["program"]
	if args := attrs["args"]; args != "" {
		is.Args = strings.Fields(args)
	}
	is.Workdir = attrs["workdir"]
	if in := attrs["inputs"]; in != "" {
		is.InputFiles = splitList(in)
	}
	if out := attrs["outputs"]; out != "" {
		is.OutputFiles = splitList(out)
	}
	is.Pattern = attrs["pattern"]
	is.OutFile = attrs["out_file"]
	return is
}

// splitList splits a comma-separated attribute value, trimming whitespace
// and dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
