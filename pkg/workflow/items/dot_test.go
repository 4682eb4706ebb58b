package items_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravi-parthasarathy/loom/pkg/workflow/items"
)

func TestFromDOT_MapsAttributes(t *testing.T) {
	t.Parallel()
	src := `digraph demo {
	store [type="data_store", url="sqlite:///db.sqlite"];
	crunch [type="tool", program="sh", args="-c true", inputs="data.csv", outputs="out.csv, log.txt"];
	bring [type="importer", pattern="*.json"];
	ship [type="exporter", out_file="manifest.json"];
	plot;
	store -> crunch;
	crunch -> plot;
}`
	spec, err := items.FromDOT(src)
	require.NoError(t, err)
	assert.Equal(t, "demo", spec.Project.Name)
	require.Len(t, spec.Items, 5)

	byName := make(map[string]items.ItemSpec)
	for _, is := range spec.Items {
		byName[is.Name] = is
	}
	assert.Equal(t, items.TypeDataStore, byName["store"].Type)
	assert.Equal(t, "sqlite:///db.sqlite", byName["store"].URL)

	crunch := byName["crunch"]
	assert.Equal(t, items.TypeTool, crunch.Type)
	assert.Equal(t, "sh", crunch.Program)
	assert.Equal(t, []string{"-c", "true"}, crunch.Args)
	assert.Equal(t, []string{"data.csv"}, crunch.InputFiles)
	assert.Equal(t, []string{"out.csv", "log.txt"}, crunch.OutputFiles)

	assert.Equal(t, "*.json", byName["bring"].Pattern)
	assert.Equal(t, "manifest.json", byName["ship"].OutFile)
	assert.Equal(t, items.TypeView, byName["plot"].Type)

	assert.Equal(t, [][2]string{{"store", "crunch"}, {"crunch", "plot"}}, spec.Connections)
}

func TestFromDOT_UndeclaredEndpointBecomesView(t *testing.T) {
	t.Parallel()
	src := `digraph d {
	store [type="data_store", url="u"];
	store -> plot;
}`
	spec, err := items.FromDOT(src)
	require.NoError(t, err)
	require.Len(t, spec.Items, 2)
	assert.Equal(t, "plot", spec.Items[1].Name)
	assert.Equal(t, items.TypeView, spec.Items[1].Type)
}

func TestFromDOT_BuildsRunnableProject(t *testing.T) {
	t.Parallel()
	src := `digraph d {
	a [type="view"];
	b [type="view"];
	a -> b;
}`
	spec, err := items.FromDOT(src)
	require.NoError(t, err)
	store, reg, err := items.Build(spec)
	require.NoError(t, err)
	assert.Equal(t, 1, store.GraphCount())
	assert.Equal(t, 2, reg.Len())
}

func TestFromDOT_InvalidSource(t *testing.T) {
	t.Parallel()
	_, err := items.FromDOT("graph {{{")
	assert.Error(t, err)
}
