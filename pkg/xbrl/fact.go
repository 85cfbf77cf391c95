package xbrl

import "time"

// Context is a parsed XBRL context: an identifier scope plus the period and
// (optionally) dimensional scenario a fact was reported against.
type Context struct {
	Name       string
	PeriodType PeriodType

	InstantDate time.Time
	StartDate   time.Time
	EndDate     time.Time

	// Scenario holds axis->member element ids present in the context's
	// scenario/segment block, keyed by axis id.
	Scenario map[string]string
}

// IsMatchByAxis reports whether the context's scenario mentions axisID at
// all, regardless of which member it is pinned to.
func (c Context) IsMatchByAxis(axisID string) bool {
	_, ok := c.Scenario[axisID]
	return ok
}

// IsMatchByMember reports whether the context pins axisID to memberID.
func (c Context) IsMatchByMember(axisID, memberID string) bool {
	m, ok := c.Scenario[axisID]
	return ok && m == memberID
}

// IsMatchByPeriodType reports whether the context's period type matches pt.
func (c Context) IsMatchByPeriodType(pt PeriodType) bool {
	return c.PeriodType == pt
}

// InlineFactData is a single ix:nonFraction / ix:nonNumeric element exactly
// as extracted from an inline XBRL HTML document, before value rendering.
type InlineFactData struct {
	Name       string
	ContextRef string
	UnitRef    string
	Sign       string // "-" or ""
	Scale      int
	HasScale   bool
	Decimals   string
	Format     string // e.g. "ixt:booleanfalse"
	Escape     string // "true" when the element's content is escaped markup
	RawText    string
	IsNonFraction bool // false means ix:nonNumeric
}

// FactData is a resolved (value-string, context) pair attached to a leaf
// node once the resolver has picked exactly one fact for it.
type FactData struct {
	Value   string
	Context Context
	UnitRef string
}
