package xbrl

import (
	"bytes"
	"encoding/xml"
	"io"
	"net/url"
	"strconv"
	"strings"
)

type rawArc struct {
	from, to       string
	order          float64
	hasOrder       bool
	weight         float64
	hasWeight      bool
	arcrole        string
	preferredLabel string
}

// roleBuilder accumulates one role's arcs while a linkbase is being parsed.
type roleBuilder struct {
	role     string
	docNode  NodeHandle
	dict     map[string]NodeHandle
	keyOrder []string
	locs     map[string]string
	arcs     []rawArc
}

// BuildLinkbaseTree parses one linkbase document of the given kind into a
// forest of role subtrees, repairing orphan subgraphs and propagating
// preferred labels for presentation trees, per the builder's seven steps.
// baseURI is used to rebase relative hrefs found in loc/roleRef elements.
func BuildLinkbaseTree(kind LinkKind, r io.Reader, baseURI string) (*LinkbaseTree, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &AnalysisError{Op: "read linkbase", Err: err}
	}

	roleRefs, err := scanRoleRefs(raw)
	if err != nil {
		return nil, err
	}

	t := newLinkbaseTree(kind)

	builders, err := walkLinks(t, kind, raw)
	if err != nil {
		return nil, err
	}

	var order float64
	for _, b := range builders {
		docNode := t.node(b.docNode)
		if href, ok := roleRefs[b.role]; ok {
			docNode.href = resolveHref(href, baseURI)
		}
		t.appendChild(t.root, b.docNode, order)
		docNode.parent = t.root
		order++

		if err := resolveHrefs(t, b, baseURI); err != nil {
			return nil, err
		}
		harvestDimensionDefaults(t, b)
		if err := repairOrphans(t, b); err != nil {
			return nil, err
		}
	}

	if kind == LinkPresentation {
		propagatePreferredLabels(t)
	}

	return t, nil
}

func scanRoleRefs(raw []byte) (map[string]string, error) {
	out := make(map[string]string)
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &AnalysisError{Op: "scan roleRef", Err: err}
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "roleRef" {
			continue
		}
		var roleURI, href string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "roleURI":
				roleURI = a.Value
			case "href":
				href = a.Value
			}
		}
		if roleURI != "" {
			out[roleURI] = href
		}
	}
	return out, nil
}

func walkLinks(t *LinkbaseTree, kind LinkKind, raw []byte) ([]*roleBuilder, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	linkEl := kind.linkElement()
	arcEl := kind.arcElement()

	var builders []*roleBuilder
	var current *roleBuilder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &AnalysisError{Op: "walk linkbase arcs", Err: err}
		}

		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case linkEl:
				role := attr(se, "role")
				doc := newNode(NodeKindDocumentName, role)
				h := t.newHandle(doc)
				current = &roleBuilder{
					role:    role,
					docNode: h,
					dict:    make(map[string]NodeHandle),
					locs:    make(map[string]string),
				}
				shortName := lastPathSegment(role)
				t.roleList = append(t.roleList, shortName)
				t.roleNodes[shortName] = h

			case "loc":
				if current == nil {
					continue
				}
				label := attr(se, "label")
				href := attr(se, "href")
				current.locs[label] = href

			case arcEl:
				if current == nil {
					continue
				}
				a := rawArc{
					from:           attr(se, "from"),
					to:             attr(se, "to"),
					arcrole:        attr(se, "arcrole"),
					preferredLabel: attr(se, "preferredLabel"),
				}
				if v := attr(se, "order"); v != "" {
					if f, err := strconv.ParseFloat(v, 64); err == nil {
						a.order = f
						a.hasOrder = true
					}
				}
				if v := attr(se, "weight"); v != "" {
					if f, err := strconv.ParseFloat(v, 64); err == nil {
						a.weight = f
						a.hasWeight = true
					}
				}
				current.arcs = append(current.arcs, a)
			}

		case xml.EndElement:
			if se.Name.Local == linkEl && current != nil {
				if err := internArcs(t, current); err != nil {
					return nil, err
				}
				builders = append(builders, current)
				current = nil
			}
		}
	}

	return builders, nil
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func (b *roleBuilder) intern(t *LinkbaseTree, label string) NodeHandle {
	if h, ok := b.dict[label]; ok {
		return h
	}
	n := newNode(NodeKindContent, label)
	h := t.newHandle(n)
	b.dict[label] = h
	b.keyOrder = append(b.keyOrder, label)
	return h
}

func internArcs(t *LinkbaseTree, b *roleBuilder) error {
	for _, a := range b.arcs {
		fromH := b.intern(t, a.from)
		toH := b.intern(t, a.to)

		if a.arcrole == dimensionDefaultArcrole {
			t.node(toH).dimensionDefault = true
			continue
		}

		t.appendChild(fromH, toH, a.order)
		toNode := t.node(toH)
		toNode.parent = fromH
		toNode.hasOrder = a.hasOrder
		if a.preferredLabel != "" {
			toNode.preferredLabel = a.preferredLabel
		}
		if a.hasWeight {
			toNode.weight = a.weight
			toNode.hasWeight = true
		}
	}
	return nil
}

func resolveHrefs(t *LinkbaseTree, b *roleBuilder, baseURI string) error {
	for _, label := range b.keyOrder {
		h := b.dict[label]
		n := t.node(h)
		href, ok := b.locs[label]
		if !ok {
			continue
		}
		resolved := resolveHref(href, baseURI)
		n.href = resolved
		n.id = fragmentOf(resolved)
	}
	return nil
}

func resolveHref(href, baseURI string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(baseURI)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func lastPathSegment(uri string) string {
	uri = strings.TrimRight(uri, "/")
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// harvestDimensionDefaults implements step 5: the dimension-default flag is
// id-scoped, and nodes that exist only as bare default-arc targets are
// deleted from the role's dictionary.
func harvestDimensionDefaults(t *LinkbaseTree, b *roleBuilder) {
	defaultIDs := make(map[string]bool)
	for _, label := range b.keyOrder {
		n := t.node(b.dict[label])
		if n.dimensionDefault {
			defaultIDs[n.id] = true
		}
	}
	if len(defaultIDs) == 0 {
		return
	}

	remaining := b.keyOrder[:0:0]
	for _, label := range b.keyOrder {
		h := b.dict[label]
		n := t.node(h)
		if defaultIDs[n.id] {
			n.dimensionDefault = true
		}
		if n.dimensionDefault && n.parent == NoHandle && len(n.children) == 0 {
			delete(b.dict, label)
			continue
		}
		remaining = append(remaining, label)
	}
	b.keyOrder = remaining
}

// repairOrphans implements step 6: forest-to-tree repair via heading
// detection and placeholder splicing.
func repairOrphans(t *LinkbaseTree, b *roleBuilder) error {
	var noParent []NodeHandle
	for _, label := range b.keyOrder {
		h := b.dict[label]
		if t.node(h).parent == NoHandle {
			noParent = append(noParent, h)
		}
	}
	if len(noParent) == 0 {
		return nil
	}

	childIDs := make(map[string]bool)
	for _, h := range noParent {
		collectDescendantIDs(t, h, childIDs)
	}

	var headings, orphans []NodeHandle
	for _, h := range noParent {
		if childIDs[t.NodeID(h)] {
			orphans = append(orphans, h)
		} else {
			headings = append(headings, h)
		}
	}
	if len(headings) == 0 {
		return &AnalysisError{Op: "build tree", Role: b.role, Err: errHeadingNotFound}
	}

	var order float64
	for _, h := range headings {
		t.appendChild(b.docNode, h, order)
		t.node(h).parent = b.docNode
		t.node(h).hasOrder = true
		order++
	}

	for len(orphans) > 0 {
		progressed := false
		var remaining []NodeHandle
		for _, orphan := range orphans {
			placeholder, placeholderParent, found := findFirstDescendantWithID(t, b.docNode, t.NodeID(orphan))
			if !found {
				remaining = append(remaining, orphan)
				continue
			}
			replaceChild(t, placeholderParent, placeholder, orphan)
			ph := t.node(placeholder)
			on := t.node(orphan)
			on.order = ph.order
			on.hasOrder = ph.hasOrder
			on.parent = placeholderParent
			on.preferredLabel = ph.preferredLabel
			on.dimensionDefault = ph.dimensionDefault
			progressed = true
		}
		if !progressed {
			return &AnalysisError{Op: "build tree", Role: b.role, Err: errOrphanNodesRemain}
		}
		orphans = remaining
	}

	return nil
}

func collectDescendantIDs(t *LinkbaseTree, h NodeHandle, set map[string]bool) {
	for _, c := range t.node(h).children {
		set[t.NodeID(c)] = true
		collectDescendantIDs(t, c, set)
	}
}

// findFirstDescendantWithID walks the subtree rooted at h in pre-order,
// skipping h itself, and returns the first node whose id matches target
// along with its parent.
func findFirstDescendantWithID(t *LinkbaseTree, h NodeHandle, target string) (NodeHandle, NodeHandle, bool) {
	for _, c := range t.node(h).children {
		if t.NodeID(c) == target {
			return c, h, true
		}
		if found, parent, ok := findFirstDescendantWithID(t, c, target); ok {
			return found, parent, ok
		}
	}
	return NoHandle, NoHandle, false
}

func replaceChild(t *LinkbaseTree, parent, oldChild, newChild NodeHandle) {
	pn := t.node(parent)
	for i, c := range pn.children {
		if c == oldChild {
			pn.children[i] = newChild
			return
		}
	}
}

// propagatePreferredLabels implements step 7: in pre-order, a node with no
// preferred label inherits its parent's.
func propagatePreferredLabels(t *LinkbaseTree) {
	w := t.NewWalker(t.root)
	for {
		h, ok := w.Next()
		if !ok {
			break
		}
		n := t.node(h)
		if n.parent == NoHandle {
			continue
		}
		if n.preferredLabel == "" {
			n.preferredLabel = t.node(n.parent).preferredLabel
		}
	}
}
