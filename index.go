package nrl

import (
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/seistools/nrl/internal/store"
)

// indexFile is the name every directory level of the catalog uses for
// its index description.
const indexFile = "index.txt"

// noDescription is the leaf description used when an index entry
// declares only a resp location.
const noDescription = "no description available"

// sectionKind classifies an index description section by its option set.
type sectionKind int

const (
	sectionInvalid sectionKind = iota
	sectionMain                // the level's guiding question
	sectionSubcatalog          // reference to a deeper index description
	sectionLeaf                // terminal (description, resource) pair
)

// classifySection decides what a section describes from its exact option
// set. Option names are compared lowercased and order-insensitively;
// only the "main" section name itself is case-insensitive.
func classifySection(name string, options []string) sectionKind {
	opts := make([]string, len(options))
	for i, o := range options {
		opts[i] = strings.ToLower(o)
	}
	sort.Strings(opts)
	set := strings.Join(opts, ",")

	if strings.EqualFold(name, "main") {
		switch set {
		case "question", "detail,question":
			return sectionMain
		}
		return sectionInvalid
	}
	switch set {
	case "path":
		return sectionSubcatalog
	case "resp", "descr,resp", "description,resp":
		return sectionLeaf
	}
	return sectionInvalid
}

// stripQuotes removes one matched pair of surrounding single or double
// quotes. Nested or repeated quoting is left alone.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// buildTree parses the index description at location into a Tree whose
// entries are unexpanded references or leaves. Referenced locations are
// resolved relative to the index description's own directory.
func buildTree(st store.Store, location string, log *zap.Logger) (*Tree, error) {
	f, err := st.Index(location)
	if err != nil {
		return nil, err
	}

	t := newTree(st, log)
	dir := st.Dir(location)
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		options := sec.KeyStrings()
		switch classifySection(sec.Name(), options) {
		case sectionMain:
			t.question = stripQuotes(sec.Key("question").String())
		case sectionSubcatalog:
			ref := st.Join(dir, stripQuotes(sec.Key("path").String()))
			t.add(sec.Name(), &entry{ref: ref})
		case sectionLeaf:
			descr := noDescription
			if sec.HasKey("descr") {
				descr = sec.Key("descr").String()
			} else if sec.HasKey("description") {
				descr = sec.Key("description").String()
			}
			t.add(sec.Name(), &entry{leaf: &Leaf{
				Description: stripQuotes(descr),
				Resource:    st.Join(dir, stripQuotes(sec.Key("resp").String())),
			}})
		default:
			return nil, &MalformedCatalogError{Location: location, Section: sec.Name(), Options: options}
		}
	}
	return t, nil
}
