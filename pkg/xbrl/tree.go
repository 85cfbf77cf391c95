package xbrl

import "sort"

// LinkKind selects which of the three linkbase flavors a LinkbaseTree was
// built from.
type LinkKind int

const (
	LinkPresentation LinkKind = iota
	LinkDefinition
	LinkCalculation
)

func (k LinkKind) linkElement() string {
	switch k {
	case LinkDefinition:
		return "definitionLink"
	case LinkCalculation:
		return "calculationLink"
	default:
		return "presentationLink"
	}
}

func (k LinkKind) arcElement() string {
	switch k {
	case LinkDefinition:
		return "definitionArc"
	case LinkCalculation:
		return "calculationArc"
	default:
		return "presentationArc"
	}
}

// LinkbaseTree is a forest of role subtrees parsed from one linkbase
// document, rooted at a synthetic NodeKindRoot node. Every node is owned by
// the tree's arena and referenced elsewhere only via NodeHandle.
type LinkbaseTree struct {
	kind LinkKind

	nodes []*node
	root  NodeHandle

	roleList  []string // short role names, in the order encountered
	roleNodes map[string]NodeHandle
}

func newLinkbaseTree(kind LinkKind) *LinkbaseTree {
	t := &LinkbaseTree{
		kind:      kind,
		roleNodes: make(map[string]NodeHandle),
	}
	root := newNode(NodeKindRoot, "document_root")
	root.href = "root"
	t.nodes = append(t.nodes, root)
	t.root = NodeHandle(0)
	return t
}

// Kind reports which linkbase flavor this tree was built from.
func (t *LinkbaseTree) Kind() LinkKind { return t.kind }

// RootHandle returns the synthetic root's handle.
func (t *LinkbaseTree) RootHandle() NodeHandle { return t.root }

// RoleList returns the short names (final path segment) of every role this
// tree contains, in the order they were encountered while parsing.
func (t *LinkbaseTree) RoleList() []string {
	out := make([]string, len(t.roleList))
	copy(out, t.roleList)
	return out
}

func (t *LinkbaseTree) newHandle(n *node) NodeHandle {
	t.nodes = append(t.nodes, n)
	return NodeHandle(len(t.nodes) - 1)
}

func (t *LinkbaseTree) node(h NodeHandle) *node {
	if h == NoHandle || int(h) < 0 || int(h) >= len(t.nodes) {
		return nil
	}
	return t.nodes[h]
}

func (t *LinkbaseTree) appendChild(parent, child NodeHandle, order float64) {
	cn := t.node(child)
	cn.order = order
	cn.hasOrder = true
	pn := t.node(parent)
	pn.children = append(pn.children, child)
}

func (t *LinkbaseTree) sortChildren(h NodeHandle) {
	n := t.node(h)
	sort.SliceStable(n.children, func(i, j int) bool {
		return t.node(n.children[i]).order < t.node(n.children[j]).order
	})
}

// NodeID returns the element id of the node at h ("" for the root or
// unresolved nodes).
func (t *LinkbaseTree) NodeID(h NodeHandle) string {
	n := t.node(h)
	if n == nil {
		return ""
	}
	return n.id
}

// NodeKind returns the kind of the node at h.
func (t *LinkbaseTree) NodeKind(h NodeHandle) NodeKind {
	n := t.node(h)
	if n == nil {
		return NodeKindContent
	}
	return n.kind
}

// NodeUsage returns the usage tag of the node at h.
func (t *LinkbaseTree) NodeUsage(h NodeHandle) Usage {
	n := t.node(h)
	if n == nil {
		return ""
	}
	return n.usage
}

// NodePeriodType returns the period type of the node at h.
func (t *LinkbaseTree) NodePeriodType(h NodeHandle) PeriodType {
	n := t.node(h)
	if n == nil {
		return ""
	}
	return n.periodType
}

// NodeLabel returns the human-readable label bound to the node at h.
func (t *LinkbaseTree) NodeLabel(h NodeHandle) string {
	n := t.node(h)
	if n == nil {
		return ""
	}
	return n.label
}

// NodePreferredLabel returns the preferred-label role bound to the node at h.
func (t *LinkbaseTree) NodePreferredLabel(h NodeHandle) string {
	n := t.node(h)
	if n == nil {
		return ""
	}
	return n.preferredLabel
}

// NodeDimensionDefault reports whether the node at h is flagged as a
// dimension default.
func (t *LinkbaseTree) NodeDimensionDefault(h NodeHandle) bool {
	n := t.node(h)
	return n != nil && n.dimensionDefault
}

// NodeXSDURI returns the schema URI for the node at h.
func (t *LinkbaseTree) NodeXSDURI(h NodeHandle) string {
	n := t.node(h)
	if n == nil {
		return ""
	}
	return n.xsdURI()
}

// NodeHref returns the raw href of the node at h.
func (t *LinkbaseTree) NodeHref(h NodeHandle) string {
	n := t.node(h)
	if n == nil {
		return ""
	}
	return n.href
}

// NodeWeight returns the calculation weight of the node at h, if any.
func (t *LinkbaseTree) NodeWeight(h NodeHandle) (float64, bool) {
	n := t.node(h)
	if n == nil {
		return 0, false
	}
	return n.weight, n.hasWeight
}

// NodeFact returns the fact attached to the node at h, if any.
func (t *LinkbaseTree) NodeFact(h NodeHandle) (FactData, bool) {
	n := t.node(h)
	if n == nil || n.fact == nil {
		return FactData{}, false
	}
	return *n.fact, true
}

// NodeChildren returns the child handles of the node at h, sorted by order.
func (t *LinkbaseTree) NodeChildren(h NodeHandle) []NodeHandle {
	t.sortChildren(h)
	n := t.node(h)
	out := make([]NodeHandle, len(n.children))
	copy(out, n.children)
	return out
}

// NodeParent returns the parent handle of the node at h, or NoHandle.
func (t *LinkbaseTree) NodeParent(h NodeHandle) NodeHandle {
	n := t.node(h)
	if n == nil {
		return NoHandle
	}
	return n.parent
}

// RoleHandle returns the document_name node handle for a role short name.
func (t *LinkbaseTree) RoleHandle(roleShortName string) (NodeHandle, bool) {
	h, ok := t.roleNodes[roleShortName]
	return h, ok
}

// SearchNode finds the first node with the given element id anywhere in the
// tree, walking in pre-order from the root. Mirrors the original's linear
// search_node; callers resolving many ids per role should prefer building a
// local index instead of calling this repeatedly.
func (t *LinkbaseTree) SearchNode(id string) (NodeHandle, bool) {
	w := t.NewWalker(t.root)
	var found NodeHandle = NoHandle
	for {
		h, ok := w.Next()
		if !ok {
			break
		}
		if t.NodeID(h) == id {
			found = h
			break
		}
	}
	if found == NoHandle {
		return NoHandle, false
	}
	return found, true
}

// Walker performs a single-shot pre-order traversal of a tree rooted at an
// arbitrary node. It is a plain value, not hidden tree state, so several
// walkers can be interleaved over the same tree. Next sorts each visited
// node's child list in place, so walkers over one tree are not safe for use
// from several goroutines at once.
type Walker struct {
	tree         *LinkbaseTree
	stack        []walkFrame
	rootForRearm NodeHandle
}

type walkFrame struct {
	node         NodeHandle
	childCursor  int
	selfEmitted  bool
}

// NewWalker creates a pre-order walker rooted at root.
func (t *LinkbaseTree) NewWalker(root NodeHandle) *Walker {
	return &Walker{
		tree:         t,
		stack:        []walkFrame{{node: root, childCursor: -1}},
		rootForRearm: root,
	}
}

// Next returns the next node in pre-order, or (NoHandle, false) once the
// walk is exhausted. Calling Next again after exhaustion re-arms the walker
// from its original root, matching the single-shot/re-armable contract of
// spec.md's iteration contract.
func (w *Walker) Next() (NodeHandle, bool) {
	if len(w.stack) == 0 {
		w.stack = []walkFrame{{node: w.rootForRearm, childCursor: -1}}
		return NoHandle, false
	}

	top := &w.stack[len(w.stack)-1]

	if !top.selfEmitted {
		top.selfEmitted = true
		return top.node, true
	}

	children := w.tree.NodeChildren(top.node)
	top.childCursor++
	if top.childCursor >= len(children) {
		w.stack = w.stack[:len(w.stack)-1]
		return w.Next()
	}

	child := children[top.childCursor]
	w.stack = append(w.stack, walkFrame{node: child, childCursor: -1})
	return w.Next()
}
