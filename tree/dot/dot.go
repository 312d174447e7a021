/*
Package dot renders trees in the Graphviz DOT language.
*/
package dot

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pbanos/sapling/tree"
)

/*
Write takes a context.Context, a tree and an io.Writer and writes onto the
writer a DOT digraph with a box per node, labelled with its description,
and an edge per branch, labelled True or False. Leaves are drawn rounded.
*/
func Write(ctx context.Context, t *tree.Tree, w io.Writer) error {
	_, err := io.WriteString(w, "digraph tree {\n\tnode [shape=box];\n")
	if err != nil {
		return err
	}
	err = t.Traverse(ctx, func(ctx context.Context, s *tree.Step) error {
		style := ""
		if s.Node.IsLeaf() {
			style = `, style=rounded`
		}
		_, err := fmt.Fprintf(w, "\t%s [label=%s%s];\n", quote(s.Node.ID), quote(t.Describe(s.Node)), style)
		if err != nil || s.Parent == nil {
			return err
		}
		_, err = fmt.Fprintf(w, "\t%s -> %s [label=%s];\n", quote(s.Parent.ID), quote(s.Node.ID), quote(s.Branch))
		return err
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "}\n")
	return err
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s) + `"`
}
