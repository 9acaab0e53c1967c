package main

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/seistools/nrl"
)

// browseResult is one catalog level (question plus labels) or a leaf.
type browseResult struct {
	Question string
	Labels   []string
	Leaf     *nrl.Leaf
}

// browse walks tree along keys and reports what the caller arrived at.
func browse(tree *nrl.Tree, keys []string) (*browseResult, error) {
	cur := tree
	for i, key := range keys {
		ent, err := cur.Get(key)
		if err != nil {
			return nil, err
		}
		if ent.Leaf != nil {
			if i != len(keys)-1 {
				return nil, fmt.Errorf("%q is a leaf entry; extra keys %v", key, keys[i+1:])
			}
			return &browseResult{Leaf: ent.Leaf}, nil
		}
		cur = ent.Subtree
	}
	return &browseResult{Question: cur.Question(), Labels: cur.Keys()}, nil
}

func (r *browseResult) json() map[string]any {
	if r.Leaf != nil {
		return map[string]any{
			"description": r.Leaf.Description,
			"resource":    r.Leaf.Resource,
		}
	}
	return map[string]any{
		"question": r.Question,
		"labels":   r.Labels,
	}
}

func newBrowseCommand(kind string) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " [KEY...]",
		Short: "Walk the " + kind + " tree one choice at a time",
		Long: fmt.Sprintf(`Walk the %s tree by supplying one key per level. With no keys the
top-level choices are listed; each further key descends one level. At a
leaf the instrument description and its RESP location are printed.`, kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			tree := client.Sensors
			if kind == "dataloggers" {
				tree = client.Dataloggers
			}
			result, err := browse(tree, args)
			if err != nil {
				return err
			}

			if jsonOut {
				fmt.Println(oj.JSON(result.json(), 2))
				return nil
			}
			if result.Leaf != nil {
				fmt.Println(result.Leaf.Description)
				fmt.Println(result.Leaf.Resource)
				return nil
			}
			if result.Question != "" {
				fmt.Println(result.Question)
			}
			for _, label := range result.Labels {
				fmt.Printf("  %q\n", label)
			}
			return nil
		},
	}
}
