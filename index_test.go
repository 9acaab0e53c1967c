package nrl

import (
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seistools/nrl/internal/store"
)

func TestClassifySection(t *testing.T) {
	tests := []struct {
		name    string
		section string
		options []string
		want    sectionKind
	}{
		{"main question", "Main", []string{"question"}, sectionMain},
		{"main question and detail", "Main", []string{"question", "detail"}, sectionMain},
		{"main option order irrelevant", "Main", []string{"detail", "question"}, sectionMain},
		{"main name case-insensitive", "MAIN", []string{"question"}, sectionMain},
		{"main with extra option", "Main", []string{"question", "extra"}, sectionInvalid},
		{"main with wrong option", "Main", []string{"detail"}, sectionInvalid},
		{"subcatalog", "Nanometrics", []string{"path"}, sectionSubcatalog},
		{"leaf resp only", "120 s", []string{"resp"}, sectionLeaf},
		{"leaf descr and resp", "120 s", []string{"descr", "resp"}, sectionLeaf},
		{"leaf description and resp", "120 s", []string{"description", "resp"}, sectionLeaf},
		{"leaf option order irrelevant", "120 s", []string{"resp", "descr"}, sectionLeaf},
		{"option names lowercased", "120 s", []string{"Descr", "RESP"}, sectionLeaf},
		{"unknown options", "120 s", []string{"foo", "bar"}, sectionInvalid},
		{"path plus extras", "Nanometrics", []string{"path", "resp"}, sectionInvalid},
		{"empty", "Nanometrics", nil, sectionInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifySection(tc.section, tc.options))
		})
	}
}

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"quoted"`, "quoted"},
		{`'quoted'`, "quoted"},
		{`plain`, "plain"},
		{`""`, ""},
		{`"mismatched'`, `"mismatched'`},
		{`"only leading`, `"only leading`},
		{`''nested''`, `'nested'`}, // one pair only
		{`"`, `"`},
		{``, ``},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, stripQuotes(tc.in), "input %q", tc.in)
	}
}

// catalogFS builds an in-memory catalog from path -> content pairs.
func catalogFS(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	for path, content := range files {
		require.NoError(t, util.WriteFile(fsys, path, []byte(content), 0o644))
	}
	return fsys
}

func TestBuildTree_QuestionRoundTrip(t *testing.T) {
	st := store.NewLocal(catalogFS(t, map[string]string{
		"sensors/index.txt": "[Main]\nquestion = \"Choose the manufacturer?\"\n\n[Maker]\npath = \"maker/index.txt\"\n",
	}), nil)

	tree, err := buildTree(st, "sensors/index.txt", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Choose the manufacturer?", tree.Question())
	assert.Equal(t, []string{"Maker"}, tree.Keys())
}

func TestBuildTree_LeafDescriptionFallback(t *testing.T) {
	st := store.NewLocal(catalogFS(t, map[string]string{
		"sensors/index.txt": "[Bare]\nresp = \"RESP.bare\"\n\n[Named]\ndescr = \"a named entry\"\nresp = \"RESP.named\"\n",
	}), nil)

	tree, err := buildTree(st, "sensors/index.txt", zap.NewNop())
	require.NoError(t, err)

	bare, err := tree.Get("Bare")
	require.NoError(t, err)
	require.NotNil(t, bare.Leaf)
	assert.Equal(t, "no description available", bare.Leaf.Description)
	assert.Equal(t, "sensors/RESP.bare", bare.Leaf.Resource)

	named, err := tree.Get("Named")
	require.NoError(t, err)
	require.NotNil(t, named.Leaf)
	assert.Equal(t, "a named entry", named.Leaf.Description)
}

func TestBuildTree_RelativeResolution(t *testing.T) {
	st := store.NewLocal(catalogFS(t, map[string]string{
		"sensors/maker/index.txt": "[Model]\npath = \"model/index.txt\"\n\n[Shared]\nresp = \"../common/RESP.shared\"\n",
	}), nil)

	tree, err := buildTree(st, "sensors/maker/index.txt", zap.NewNop())
	require.NoError(t, err)

	shared, err := tree.Get("Shared")
	require.NoError(t, err)
	require.NotNil(t, shared.Leaf)
	assert.Equal(t, "sensors/common/RESP.shared", shared.Leaf.Resource)
}

func TestBuildTree_RejectsUnknownSectionShape(t *testing.T) {
	st := store.NewLocal(catalogFS(t, map[string]string{
		"sensors/index.txt": "[Weird]\nfoo = \"1\"\nbar = \"2\"\n",
	}), nil)

	_, err := buildTree(st, "sensors/index.txt", zap.NewNop())
	require.Error(t, err)

	var merr *MalformedCatalogError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "sensors/index.txt", merr.Location)
	assert.Equal(t, "Weird", merr.Section)
}

func TestBuildTree_RejectsMalformedMain(t *testing.T) {
	st := store.NewLocal(catalogFS(t, map[string]string{
		"sensors/index.txt": "[Main]\nquestion = \"Pick\"\nextra = \"nope\"\n",
	}), nil)

	_, err := buildTree(st, "sensors/index.txt", zap.NewNop())
	var merr *MalformedCatalogError
	require.ErrorAs(t, err, &merr)
	assert.Contains(t, merr.Error(), "sensors/index.txt")
}
