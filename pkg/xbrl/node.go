package xbrl

// NodeHandle indexes into a LinkbaseTree's node arena. The zero value is the
// handle of the tree's synthetic root; use NoHandle for "absent".
type NodeHandle int

// NoHandle represents the absence of a node reference (no parent, etc.).
const NoHandle NodeHandle = -1

// NodeKind classifies a node's position in a linkbase tree.
type NodeKind int

const (
	// NodeKindRoot is the synthetic tree root; exactly one per tree.
	NodeKindRoot NodeKind = iota
	// NodeKindDocumentName is a role heading, direct child of the root.
	NodeKindDocumentName
	// NodeKindContent is an ordinary taxonomy element within a role.
	NodeKindContent
)

// Usage classifies the reporting role of a content node, as determined by
// the schema enricher from the element's XSD declaration.
type Usage string

const (
	UsageHeading   Usage = "heading"
	UsageTitle     Usage = "title"
	UsageTable     Usage = "table"
	UsageAxis      Usage = "axis"
	UsageMember    Usage = "member"
	UsageLineItems Usage = "line_items"
	UsageNumber    Usage = "number"
	UsageDate      Usage = "date"
	UsageBool      Usage = "bool"
	UsageURI       Usage = "uri"
	UsageTextBlock Usage = "text_block"
	UsageText      Usage = "text"
)

// leafUsage reports whether a usage tag identifies a fact-bearing leaf,
// i.e. one the resolver attaches facts to.
func (u Usage) leafUsage() bool {
	switch u {
	case UsageNumber, UsageDate, UsageTextBlock, UsageText, UsageBool:
		return true
	default:
		return false
	}
}

// PeriodType is the XBRL period type of a leaf element.
type PeriodType string

const (
	PeriodInstant  PeriodType = "instant"
	PeriodDuration PeriodType = "duration"
)

// StandardLabelRole is the fallback label role used when a node's preferred
// label isn't found in a label linkbase.
const StandardLabelRole = "http://www.xbrl.org/2003/role/label"

// PeriodStartLabelRole is the preferred-label role that makes an instant
// leaf resolve against the prior period instead of the target period
// (e.g. "cash and cash equivalents at beginning of period").
const PeriodStartLabelRole = "http://www.xbrl.org/2003/role/periodStartLabel"

// dimensionDefaultArcrole is the XBRL arcrole marking a definition arc as a
// dimension-default relation rather than a parent-child edge.
const dimensionDefaultArcrole = "http://xbrl.org/int/dim/arcrole/dimension-default"

// node is one element within one linkbase tree. Nodes never hold pointers to
// each other; all relationships are NodeHandles resolved through the owning
// LinkbaseTree's arena, per the arena-of-handles design used to avoid
// ownership cycles in a systems language.
type node struct {
	kind NodeKind

	labelInLinkbase string

	order    float64
	hasOrder bool

	parent   NodeHandle
	children []NodeHandle

	href string
	id   string

	preferredLabel string // "" means unset
	weight         float64
	hasWeight      bool

	dimensionDefault bool

	usage      Usage
	name       string
	periodType PeriodType

	label string // human-readable label, set by the label analyzer

	fact *FactData
}

func newNode(kind NodeKind, labelInLinkbase string) *node {
	return &node{
		kind:            kind,
		labelInLinkbase: labelInLinkbase,
		parent:          NoHandle,
	}
}

// xsdURI returns the schema URI portion of href (everything before '#').
func (n *node) xsdURI() string {
	return splitFragment(n.href)
}

func splitFragment(href string) string {
	for i := len(href) - 1; i >= 0; i-- {
		if href[i] == '#' {
			return href[:i]
		}
	}
	return href
}

func fragmentOf(href string) string {
	for i := len(href) - 1; i >= 0; i-- {
		if href[i] == '#' {
			return href[i+1:]
		}
	}
	return ""
}
