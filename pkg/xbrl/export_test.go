package xbrl

// NOTE: Test-only helper constructors to access unexported fields.
// This file is compiled only in tests.

func NewTreeForTest(kind LinkKind) *LinkbaseTree {
	return newLinkbaseTree(kind)
}

func (t *LinkbaseTree) AppendChildForTest(parent, child NodeHandle, order float64) {
	t.appendChild(parent, child, order)
	t.node(child).parent = parent
}

func (t *LinkbaseTree) NewNodeForTest(kind NodeKind, labelInLinkbase string) NodeHandle {
	return t.newHandle(newNode(kind, labelInLinkbase))
}

func (t *LinkbaseTree) SetNodeFieldsForTest(h NodeHandle, id, href string, usage Usage, name string, periodType PeriodType, preferredLabel string, dimensionDefault bool) {
	n := t.node(h)
	n.id = id
	n.href = href
	n.usage = usage
	n.name = name
	n.periodType = periodType
	n.preferredLabel = preferredLabel
	n.dimensionDefault = dimensionDefault
}

func (t *LinkbaseTree) SetNodeFactForTest(h NodeHandle, f FactData) {
	t.node(h).fact = &f
}

func (t *LinkbaseTree) RegisterRoleForTest(shortName string, docNode NodeHandle) {
	t.roleList = append(t.roleList, shortName)
	t.roleNodes[shortName] = docNode
}

func NewContextForTest(name string, periodType PeriodType, instant, start, end string, scenario map[string]string) Context {
	if scenario == nil {
		scenario = make(map[string]string)
	}
	c := Context{
		Name:       name,
		PeriodType: periodType,
		Scenario:   scenario,
	}
	if instant != "" {
		t, _ := parseContextDate(instant)
		c.InstantDate = t
	}
	if start != "" {
		t, _ := parseContextDate(start)
		c.StartDate = t
	}
	if end != "" {
		t, _ := parseContextDate(end)
		c.EndDate = t
	}
	return c
}

func NewAnalyzerForTest(facts []InlineFactData, contexts map[string]Context) *Analyzer {
	return &Analyzer{facts: facts, contexts: contexts}
}

func NewInlineFactForTest(name, contextRef, unitRef, sign string, scale int, hasScale bool, decimals, format, escape, rawText string, isNonFraction bool) InlineFactData {
	return InlineFactData{
		Name:          name,
		ContextRef:    contextRef,
		UnitRef:       unitRef,
		Sign:          sign,
		Scale:         scale,
		HasScale:      hasScale,
		Decimals:      decimals,
		Format:        format,
		Escape:        escape,
		RawText:       rawText,
		IsNonFraction: isNonFraction,
	}
}

func NewElementDeclForTest(id, name, typ, substGroup, periodType string, abstract bool) ElementDecl {
	return ElementDecl{
		ID:                id,
		Name:              name,
		Type:              typ,
		SubstitutionGroup: substGroup,
		PeriodType:        periodType,
		Abstract:          abstract,
	}
}

var ClassifyUsageForTest = classifyUsage

var SlugifyForTest = slugify

var LabelCachePathForTest = labelCachePath

var NormalizeSpaceForTest = normalizeSpace
