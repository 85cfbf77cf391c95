package xbrl_test

import (
	"testing"

	"github.com/nk-xbrl/jpxbrl/pkg/xbrl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkerPreOrderAndRearm(t *testing.T) {
	t.Parallel()

	tr := xbrl.NewTreeForTest(xbrl.LinkPresentation)
	root := tr.RootHandle()

	a := tr.NewNodeForTest(xbrl.NodeKindContent, "a")
	b := tr.NewNodeForTest(xbrl.NodeKindContent, "b")
	c := tr.NewNodeForTest(xbrl.NodeKindContent, "c")

	tr.AppendChildForTest(root, a, 0)
	tr.AppendChildForTest(a, b, 1)
	tr.AppendChildForTest(a, c, 0)

	var order []xbrl.NodeHandle
	w := tr.NewWalker(root)
	for {
		h, ok := w.Next()
		if !ok {
			break
		}
		order = append(order, h)
	}
	require.Equal(t, []xbrl.NodeHandle{root, a, c, b}, order)

	// Next() after exhaustion re-arms instead of staying dead.
	h, ok := w.Next()
	assert.True(t, ok)
	assert.Equal(t, root, h)
}

func TestRoleHandleAndSearchNode(t *testing.T) {
	t.Parallel()

	tr := xbrl.NewTreeForTest(xbrl.LinkPresentation)
	doc := tr.NewNodeForTest(xbrl.NodeKindDocumentName, "role1")
	tr.AppendChildForTest(tr.RootHandle(), doc, 0)
	tr.RegisterRoleForTest("role1", doc)

	leaf := tr.NewNodeForTest(xbrl.NodeKindContent, "leaf")
	tr.SetNodeFieldsForTest(leaf, "jppfs_cor_Assets", "", "", "", "", "", false)
	tr.AppendChildForTest(doc, leaf, 0)

	h, ok := tr.RoleHandle("role1")
	require.True(t, ok)
	assert.Equal(t, doc, h)

	_, ok = tr.RoleHandle("missing")
	assert.False(t, ok)

	found, ok := tr.SearchNode("jppfs_cor_Assets")
	require.True(t, ok)
	assert.Equal(t, leaf, found)

	_, ok = tr.SearchNode("nope")
	assert.False(t, ok)
}

func TestNodeChildrenSortedByOrder(t *testing.T) {
	t.Parallel()

	tr := xbrl.NewTreeForTest(xbrl.LinkCalculation)
	root := tr.RootHandle()

	first := tr.NewNodeForTest(xbrl.NodeKindContent, "first")
	second := tr.NewNodeForTest(xbrl.NodeKindContent, "second")

	tr.AppendChildForTest(root, second, 5)
	tr.AppendChildForTest(root, first, 1)

	children := tr.NodeChildren(root)
	require.Len(t, children, 2)
	assert.Equal(t, first, children[0])
	assert.Equal(t, second, children[1])
}
