package xbrl

import (
	"context"
	"encoding/xml"
	"io"
	"strings"
)

// ElementDecl is the subset of an xs:element declaration the schema
// enricher classifies on: its attributes after colon-stripping to local
// names, exactly as spec.md §4.5 reads them off the XSD.
type ElementDecl struct {
	ID                string
	Name              string
	Type              string
	SubstitutionGroup string
	PeriodType        string
	Abstract          bool
}

// SchemaLoader resolves one XSD document's element declarations, keyed by
// id. pkg/source implements this by fetching+parsing through the XML
// Source Provider; tests can supply a map-backed fake.
type SchemaLoader interface {
	ElementDecls(ctx context.Context, xsdURI string) (map[string]ElementDecl, error)
}

// ParseXSDElementDecls parses an XBRL taxonomy schema (XSD), extracting
// every xs:element declaration's id and classification attributes. Only
// top-level attributes are read; element content (annotation, etc.) is
// skipped.
func ParseXSDElementDecls(r io.Reader) (map[string]ElementDecl, error) {
	dec := xml.NewDecoder(r)
	out := make(map[string]ElementDecl)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &AnalysisError{Op: "decode schema", Err: err}
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "element" {
			continue
		}

		decl := ElementDecl{}
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "id":
				decl.ID = a.Value
			case "name":
				decl.Name = a.Value
			case "type":
				decl.Type = a.Value
			case "substitutionGroup":
				decl.SubstitutionGroup = a.Value
			case "periodType":
				decl.PeriodType = a.Value
			case "abstract":
				decl.Abstract = a.Value == "true" || a.Value == "1"
			}
		}
		if decl.ID != "" {
			out[decl.ID] = decl
		}
		if err := dec.Skip(); err != nil {
			return nil, &AnalysisError{Op: "skip schema element", ElementID: decl.ID, Err: err}
		}
	}

	return out, nil
}

// classifyUsage implements spec.md §4.5's ordered rule table: the first
// matching rule wins. localName strips any "prefix:" off decl.Type and
// decl.SubstitutionGroup before matching, matching the colon-stripped
// comparison the rules specify.
func classifyUsage(decl ElementDecl) (Usage, bool) {
	name := decl.Name
	typ := localName(decl.Type)
	sub := localName(decl.SubstitutionGroup)
	abstract := decl.Abstract

	switch {
	case strings.Contains(name, "Heading") && typ == "stringItemType" && sub == "identifierItem" && abstract:
		return UsageHeading, true
	case strings.Contains(name, "Abstract") && typ == "stringItemType" && sub == "item" && abstract:
		return UsageTitle, true
	case strings.Contains(name, "Table") && typ == "stringItemType" && sub == "hypercubeItem" && abstract:
		return UsageTable, true
	case strings.Contains(name, "Axis") && typ == "stringItemType" && sub == "dimensionItem" && abstract:
		return UsageAxis, true
	case strings.Contains(name, "Member") && typ == "domainItemType" && sub == "item" && abstract:
		return UsageMember, true
	case strings.Contains(name, "LineItems") && typ == "stringItemType" && sub == "item" && abstract:
		return UsageLineItems, true
	case !abstract && isNumberType(typ):
		return UsageNumber, true
	case !abstract && typ == "dateItemType":
		return UsageDate, true
	case !abstract && typ == "booleanItemType":
		return UsageBool, true
	case !abstract && typ == "anyURIItemType":
		return UsageURI, true
	case !abstract && typ == "textBlockItemType":
		return UsageTextBlock, true
	case !abstract && typ == "stringItemType" && sub == "item":
		return UsageText, true
	case typ == "stringItemType" && sub == "item" && abstract:
		return UsageTitle, true
	default:
		return "", false
	}
}

func isNumberType(typ string) bool {
	switch typ {
	case "monetaryItemType", "perShareItemType", "sharesItemType",
		"percentItemType", "percentage1ItemType", "percentage2ItemType",
		"decimalItemType", "nonNegativeIntegerItemType":
		return true
	}
	return strings.HasPrefix(typ, "numberOf")
}

func localName(qname string) string {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

// EnrichSchema annotates every content node under the given role with its
// usage, name, and period type, fetching each distinct XSD document through
// loader at most once. document_name nodes are skipped, matching spec.md
// §4.5.
func EnrichSchema(ctx context.Context, t *LinkbaseTree, roleShortName string, loader SchemaLoader) error {
	roleHandle, ok := t.RoleHandle(roleShortName)
	if !ok {
		return &AnalysisError{Op: "enrich schema", Role: roleShortName, Err: errRoleNotFound}
	}

	declCache := make(map[string]map[string]ElementDecl)

	w := t.NewWalker(roleHandle)
	for {
		h, ok := w.Next()
		if !ok {
			break
		}
		if t.NodeKind(h) == NodeKindDocumentName {
			continue
		}

		n := t.node(h)
		uri := n.xsdURI()
		decls, cached := declCache[uri]
		if !cached {
			fetched, err := loader.ElementDecls(ctx, uri)
			if err != nil {
				return &AnalysisError{Op: "fetch schema", Role: roleShortName, ElementID: n.id, Err: err}
			}
			decls = fetched
			declCache[uri] = decls
		}

		decl, found := decls[n.id]
		if !found {
			return &AnalysisError{Op: "element not declared in schema", Role: roleShortName, ElementID: n.id}
		}

		usage, ok := classifyUsage(decl)
		if !ok {
			return &AnalysisError{Op: "classify element usage", Role: roleShortName, ElementID: n.id}
		}

		n.usage = usage
		n.name = decl.Name
		if decl.PeriodType == "instant" {
			n.periodType = PeriodInstant
		} else {
			n.periodType = PeriodDuration
		}
	}

	return nil
}
