package xbrl

import "strings"

// ResolveMode selects whether the caller is allowed to pin the
// consolidation axis explicitly.
type ResolveMode int

const (
	// ModeDefault forbids the caller from selecting the consolidation
	// axis; the resolver picks its sole member itself.
	ModeDefault ResolveMode = iota
	// ModeExplicit allows the caller to select any axis, including the
	// consolidation axis.
	ModeExplicit
)

// ResolveParams bundles the inputs the Dimension/Fact Resolver needs beyond
// the enriched tree and instance analyzer.
type ResolveParams struct {
	Role         string
	AxisSelect   map[string]string // caller-selected axis-id -> member-id
	TargetTime   string            // e.g. "CurrentYear"
	OneBefore    string            // e.g. "Prior1Year"
	Mode         ResolveMode
}

// ResolveFacts implements the Dimension/Fact Resolver: it filters the
// instance's contexts down to one per leaf and attaches the corresponding
// fact to each resolved leaf node.
func ResolveFacts(t *LinkbaseTree, analyzer *Analyzer, p ResolveParams) error {
	roleHandle, ok := t.RoleHandle(p.Role)
	if !ok {
		return &AnalysisError{Op: "resolve facts", Role: p.Role, Err: errRoleNotFound}
	}

	table := buildTableStructure(t, roleHandle)
	consolidationAxis := findConsolidationAxis(t, roleHandle, table)

	if p.Mode == ModeDefault {
		if consolidationAxis != "" {
			if _, supplied := p.AxisSelect[consolidationAxis]; supplied {
				return &AnalysisError{Op: "resolve facts", Role: p.Role, Err: errConsolidationAxis}
			}
		}
	}

	contexts := analyzer.ContextList()
	contexts = filterByAxisSet(contexts, table)

	usedAxes := make(map[string]bool)
	for axis, member := range p.AxisSelect {
		isDefault := memberIsDefault(t, table, axis, member)
		contexts = filterByMembership(contexts, axis, member, isDefault)
		usedAxes[axis] = true
	}

	if p.Mode == ModeDefault && consolidationAxis != "" {
		members := table[consolidationAxis]
		if len(members) != 1 {
			return &AnalysisError{Op: "resolve facts", Role: p.Role, Err: errMultipleMembers}
		}
		sole := t.NodeID(members[0])
		isDefault := t.NodeDimensionDefault(members[0])
		contexts = filterByMembership(contexts, consolidationAxis, sole, isDefault)
		usedAxes[consolidationAxis] = true
	}

	for axis, members := range table {
		if axis == consolidationAxis || usedAxes[axis] {
			continue
		}
		if len(members) > 0 {
			return &AnalysisError{Op: "resolve facts", Role: p.Role, Err: errColumnAxisHasMembers}
		}
	}

	return resolveLeaves(t, roleHandle, analyzer, contexts, p)
}

// buildTableStructure implements step 1: axis-id -> ordered descendant
// member node handles, for every axis node under the role.
func buildTableStructure(t *LinkbaseTree, roleHandle NodeHandle) map[string][]NodeHandle {
	table := make(map[string][]NodeHandle)
	w := t.NewWalker(roleHandle)
	for {
		h, ok := w.Next()
		if !ok {
			break
		}
		if t.NodeUsage(h) != UsageAxis {
			continue
		}
		axisID := t.NodeID(h)
		var members []NodeHandle
		sub := t.NewWalker(h)
		for {
			mh, ok := sub.Next()
			if !ok {
				break
			}
			if mh == h {
				continue
			}
			if t.NodeUsage(mh) == UsageMember {
				members = append(members, mh)
			}
		}
		table[axisID] = members
	}
	return table
}

// findConsolidationAxis implements step 2: the first axis-id (in the order
// encountered while building the table) whose node name contains
// "Consolidated".
func findConsolidationAxis(t *LinkbaseTree, roleHandle NodeHandle, table map[string][]NodeHandle) string {
	w := t.NewWalker(roleHandle)
	for {
		h, ok := w.Next()
		if !ok {
			return ""
		}
		if t.NodeUsage(h) != UsageAxis {
			continue
		}
		axisID := t.NodeID(h)
		if _, inTable := table[axisID]; inTable && strings.Contains(t.node(h).name, "Consolidated") {
			return axisID
		}
	}
}

func memberIsDefault(t *LinkbaseTree, table map[string][]NodeHandle, axis, member string) bool {
	for _, mh := range table[axis] {
		if t.NodeID(mh) == member {
			return t.NodeDimensionDefault(mh)
		}
	}
	return false
}

// filterByAxisSet implements step 5: keep contexts whose scenario mentions
// only axes present in the role's table.
func filterByAxisSet(contexts []Context, table map[string][]NodeHandle) []Context {
	out := make([]Context, 0, len(contexts))
	for _, c := range contexts {
		ok := true
		for axis := range c.Scenario {
			if _, known := table[axis]; !known {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// filterByMembership implements steps 6/7: if member is the dimension
// default, keep contexts that omit the axis entirely; otherwise keep
// contexts that pin the axis to exactly that member.
func filterByMembership(contexts []Context, axis, member string, memberIsDefault bool) []Context {
	out := make([]Context, 0, len(contexts))
	for _, c := range contexts {
		if memberIsDefault {
			if !c.IsMatchByAxis(axis) {
				out = append(out, c)
			}
			continue
		}
		if c.IsMatchByMember(axis, member) {
			out = append(out, c)
		}
	}
	return out
}

// resolveLeaves implements step 9: for every fact-bearing leaf, narrow a
// fresh copy of the filtered context list to the leaf's period type and
// target time, and attach the resulting fact.
func resolveLeaves(t *LinkbaseTree, roleHandle NodeHandle, analyzer *Analyzer, contexts []Context, p ResolveParams) error {
	w := t.NewWalker(roleHandle)
	for {
		h, ok := w.Next()
		if !ok {
			break
		}
		n := t.node(h)
		if !n.usage.leafUsage() {
			continue
		}

		leafContexts := cloneContexts(contexts)
		leafContexts = filterByPeriodType(leafContexts, n.periodType)

		timeToken := p.TargetTime
		if n.periodType == PeriodInstant && n.preferredLabel == PeriodStartLabelRole {
			timeToken = p.OneBefore
		}
		leafContexts = filterByTimeToken(leafContexts, timeToken)

		switch len(leafContexts) {
		case 0:
			continue
		case 1:
			ctx := leafContexts[0]
			value, found, err := analyzer.FactValue(n.id, ctx.Name)
			if err != nil {
				return &AnalysisError{Op: "render leaf value", Role: p.Role, ElementID: n.id, Context: ctx.Name, Err: err}
			}
			if !found {
				continue
			}
			n.fact = &FactData{
				Value:   value,
				Context: ctx,
				UnitRef: analyzer.UnitRef(n.id, ctx.Name),
			}
		default:
			return &AnalysisError{Op: "resolve facts", Role: p.Role, ElementID: n.id, Err: errContextNotSingular}
		}
	}
	return nil
}

func cloneContexts(contexts []Context) []Context {
	out := make([]Context, len(contexts))
	for i, c := range contexts {
		out[i] = c.clone()
	}
	return out
}

func filterByPeriodType(contexts []Context, pt PeriodType) []Context {
	out := make([]Context, 0, len(contexts))
	for _, c := range contexts {
		if c.IsMatchByPeriodType(pt) {
			out = append(out, c)
		}
	}
	return out
}

func filterByTimeToken(contexts []Context, token string) []Context {
	out := make([]Context, 0, len(contexts))
	for _, c := range contexts {
		if strings.HasPrefix(c.Name, token) {
			out = append(out, c)
		}
	}
	return out
}

// CopyFactsFromTree copies facts from src's role subtree to dst's role
// subtree by matching element id, implementing
// read_instance_data_from_another_tree: calculation trees inherit facts
// already resolved on the presentation tree instead of re-resolving them.
func CopyFactsFromTree(dst *LinkbaseTree, dstRole string, src *LinkbaseTree, srcRole string) error {
	srcRoleHandle, ok := src.RoleHandle(srcRole)
	if !ok {
		return &AnalysisError{Op: "copy facts", Role: srcRole, Err: errRoleNotFound}
	}
	dstRoleHandle, ok := dst.RoleHandle(dstRole)
	if !ok {
		return &AnalysisError{Op: "copy facts", Role: dstRole, Err: errRoleNotFound}
	}

	factsByID := make(map[string]*FactData)
	sw := src.NewWalker(srcRoleHandle)
	for {
		h, ok := sw.Next()
		if !ok {
			break
		}
		if f, has := src.NodeFact(h); has {
			factsByID[src.NodeID(h)] = &f
		}
	}

	dw := dst.NewWalker(dstRoleHandle)
	for {
		h, ok := dw.Next()
		if !ok {
			break
		}
		if f, ok := factsByID[dst.NodeID(h)]; ok {
			dst.node(h).fact = f
		}
	}

	return nil
}

// MergeDimensionDefaults copies the dimension-default flag from src's role
// subtree onto the matching (by element id) nodes of dst's role subtree.
// Presentation and definition linkbases describe the same taxonomy elements
// independently, so the presentation tree the resolver operates on only
// learns which members are dimension defaults once this runs.
func MergeDimensionDefaults(dst *LinkbaseTree, dstRole string, src *LinkbaseTree, srcRole string) error {
	srcRoleHandle, ok := src.RoleHandle(srcRole)
	if !ok {
		return &AnalysisError{Op: "merge dimension defaults", Role: srcRole, Err: errRoleNotFound}
	}
	dstRoleHandle, ok := dst.RoleHandle(dstRole)
	if !ok {
		return &AnalysisError{Op: "merge dimension defaults", Role: dstRole, Err: errRoleNotFound}
	}

	defaultIDs := make(map[string]bool)
	sw := src.NewWalker(srcRoleHandle)
	for {
		h, ok := sw.Next()
		if !ok {
			break
		}
		if src.NodeDimensionDefault(h) {
			defaultIDs[src.NodeID(h)] = true
		}
	}

	dw := dst.NewWalker(dstRoleHandle)
	for {
		h, ok := dw.Next()
		if !ok {
			break
		}
		if defaultIDs[dst.NodeID(h)] {
			dst.node(h).dimensionDefault = true
		}
	}

	return nil
}
