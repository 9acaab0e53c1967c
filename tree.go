package nrl

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/seistools/nrl/internal/store"
)

// Leaf is a terminal catalog entry: a resource location plus its
// human-readable description.
type Leaf struct {
	Description string
	Resource    string // location understood by the backing store
}

// Entry is the resolved value of one catalog slot. Exactly one of the
// two fields is set.
type Entry struct {
	Subtree *Tree
	Leaf    *Leaf
}

// entry is the stored tagged variant: an unexpanded index reference, a
// leaf, or a memoized subtree.
type entry struct {
	ref  string // unexpanded index location; cleared once expanded
	leaf *Leaf
	sub  *Tree
}

// Tree is one level of the catalog: an insertion-ordered mapping from
// label to a sub-catalog or a leaf. Sub-catalog references are parsed on
// first access and the expansion is memoized in place, so each index
// description is fetched at most once per tree, no matter how often it
// is looked up. Safe for concurrent use.
type Tree struct {
	mu       sync.Mutex
	store    store.Store
	log      *zap.Logger
	question string
	entries  *orderedmap.OrderedMap[string, *entry]
}

func newTree(st store.Store, log *zap.Logger) *Tree {
	return &Tree{
		store:   st,
		log:     log,
		entries: orderedmap.New[string, *entry](),
	}
}

func (t *Tree) add(label string, e *entry) {
	t.entries.Set(label, e)
}

// Question returns the level's guiding question, or "" when the index
// description declared none.
func (t *Tree) Question() string { return t.question }

// Len returns the number of labels at this level.
func (t *Tree) Len() int { return t.entries.Len() }

// Keys returns the labels at this level sorted lexicographically, for
// display. Lookup itself is unordered.
func (t *Tree) Keys() []string {
	keys := make([]string, 0, t.entries.Len())
	for pair := t.entries.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the entry stored under label, expanding a sub-catalog
// reference on first access.
func (t *Tree) Get(label string) (*Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries.Get(label)
	if !ok {
		return nil, &KeyNotFoundError{Key: label, Available: t.Keys()}
	}
	if e.leaf != nil {
		return &Entry{Leaf: e.leaf}, nil
	}
	if e.sub == nil {
		sub, err := buildTree(t.store, e.ref, t.log)
		if err != nil {
			return nil, err
		}
		t.log.Debug("expanded catalog node",
			zap.String("label", label), zap.String("index", e.ref))
		e.sub, e.ref = sub, ""
	}
	return &Entry{Subtree: e.sub}, nil
}

// Resolve walks the tree along keys and returns the leaf at the end.
// The number of keys must match the branch depth exactly: running out of
// keys above a leaf and having keys left below one are both errors.
func (t *Tree) Resolve(keys ...string) (*Leaf, error) {
	cur := t
	for i, key := range keys {
		ent, err := cur.Get(key)
		if err != nil {
			return nil, err
		}
		if ent.Leaf != nil {
			if i != len(keys)-1 {
				return nil, &PathMismatchError{
					Keys:   keys,
					Reason: fmt.Sprintf("leaf reached after %d of %d keys", i+1, len(keys)),
				}
			}
			return ent.Leaf, nil
		}
		cur = ent.Subtree
	}
	return nil, &PathMismatchError{Keys: keys, Reason: "keys exhausted before reaching a leaf"}
}

// String renders the level the way an interactive browser would: the
// guiding question followed by the sorted, quoted labels.
func (t *Tree) String() string {
	n := t.Len()
	if n == 0 {
		return "0 items."
	}

	var b strings.Builder
	if q := t.Question(); q != "" {
		fmt.Fprintf(&b, "%s (%d items):\n", q, n)
	} else {
		fmt.Fprintf(&b, "%d items:\n", n)
	}
	b.WriteString(indentWrap(joinQuoted(t.Keys()), "  "))
	return b.String()
}

func joinQuoted(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = "'" + k + "'"
	}
	return strings.Join(quoted, ", ")
}
