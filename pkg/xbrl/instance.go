package xbrl

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Analyzer extracts contexts and fact values from a filing's inline-XBRL
// HTML documents. Inline XBRL is real HTML (can carry unclosed tags well
// formed XML can't tolerate), so documents are parsed with
// golang.org/x/net/html rather than encoding/xml.
type Analyzer struct {
	facts    []InlineFactData
	contexts map[string]Context
}

// NewAnalyzer creates an empty instance analyzer. Call AddDocument for each
// inline-XBRL HTML file in the filing before resolving facts.
func NewAnalyzer() *Analyzer {
	return &Analyzer{contexts: make(map[string]Context)}
}

// AddDocument parses one inline-XBRL HTML document, accumulating its facts
// and contexts into the analyzer.
func (a *Analyzer) AddDocument(r io.Reader) error {
	root, err := html.Parse(r)
	if err != nil {
		return &AnalysisError{Op: "parse inline XBRL document", Err: err}
	}
	return a.walk(root)
}

func (a *Analyzer) walk(n *html.Node) error {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "ix:nonfraction":
			f, err := extractInlineFact(n, true)
			if err != nil {
				return err
			}
			a.facts = append(a.facts, f)
		case "ix:nonnumeric":
			f, err := extractInlineFact(n, false)
			if err != nil {
				return err
			}
			a.facts = append(a.facts, f)
		case "xbrli:context", "context":
			ctx, err := parseContextNode(n)
			if err != nil {
				return err
			}
			a.contexts[ctx.Name] = ctx
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := a.walk(c); err != nil {
			return err
		}
	}
	return nil
}

// Contexts returns every context parsed so far, keyed by name.
func (a *Analyzer) Contexts() map[string]Context {
	return a.contexts
}

// ContextList returns a fresh, independently-mutable copy of every parsed
// context. The resolver takes deep copies before filtering so the analyzer
// remains reusable across roles and leaves.
func (a *Analyzer) ContextList() []Context {
	out := make([]Context, 0, len(a.contexts))
	for _, c := range a.contexts {
		out = append(out, c.clone())
	}
	return out
}

func (c Context) clone() Context {
	scenario := make(map[string]string, len(c.Scenario))
	for k, v := range c.Scenario {
		scenario[k] = v
	}
	c.Scenario = scenario
	return c
}

// FactValue implements get_data_from_instance_file: the rendered value of
// the first fact matching elementID and contextRef, or ("", false) if none
// matches.
func (a *Analyzer) FactValue(elementID, contextRef string) (string, bool, error) {
	for _, f := range a.facts {
		if f.Name == elementID && f.ContextRef == contextRef {
			v, err := RenderValue(f)
			if err != nil {
				return "", false, err
			}
			return v, true, nil
		}
	}
	return "", false, nil
}

// UnitRef returns the unitRef of the first fact matching elementID and
// contextRef, if any.
func (a *Analyzer) UnitRef(elementID, contextRef string) string {
	for _, f := range a.facts {
		if f.Name == elementID && f.ContextRef == contextRef {
			return f.UnitRef
		}
	}
	return ""
}

func extractInlineFact(n *html.Node, isNonFraction bool) (InlineFactData, error) {
	f := InlineFactData{IsNonFraction: isNonFraction}

	for _, attr := range n.Attr {
		switch attr.Key {
		case "name":
			f.Name = normalizeQName(attr.Val)
		case "contextref":
			f.ContextRef = attr.Val
		case "unitref":
			f.UnitRef = attr.Val
		case "sign":
			f.Sign = attr.Val
		case "scale":
			if v, err := strconv.Atoi(strings.TrimSpace(attr.Val)); err == nil {
				f.Scale = v
				f.HasScale = true
			}
		case "decimals":
			f.Decimals = attr.Val
		case "format":
			f.Format = attr.Val
		case "escape":
			f.Escape = attr.Val
		}
	}

	if f.Escape == "true" {
		f.RawText = innerMarkup(n)
	} else {
		f.RawText = innerText(n)
	}

	return f, nil
}

func innerText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return normalizeSpace(sb.String())
}

func innerMarkup(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return strings.TrimSpace(buf.String())
}

func attrVal(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func normalizeQName(qname string) string {
	return strings.ReplaceAll(qname, ":", "_")
}

func parseContextNode(n *html.Node) (Context, error) {
	id, _ := attrVal(n, "id")
	ctx := Context{Name: id, Scenario: make(map[string]string)}

	pt, err := inferPeriodType(id)
	if err != nil {
		return Context{}, &AnalysisError{Op: "infer period type", Context: id, Err: err}
	}
	ctx.PeriodType = pt

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "xbrli:instant", "instant":
				if t, ok := parseContextDate(innerText(node)); ok {
					ctx.InstantDate = t
				}
				return
			case "xbrli:startdate", "startdate":
				if t, ok := parseContextDate(innerText(node)); ok {
					ctx.StartDate = t
				}
				return
			case "xbrli:enddate", "enddate":
				if t, ok := parseContextDate(innerText(node)); ok {
					ctx.EndDate = t
				}
				return
			case "xbrli:explicitmember", "explicitmember":
				axis, _ := attrVal(node, "dimension")
				member := innerText(node)
				ctx.Scenario[normalizeQName(axis)] = normalizeQName(member)
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return ctx, nil
}

func parseContextDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func inferPeriodType(contextID string) (PeriodType, error) {
	token := contextID
	if i := strings.IndexByte(contextID, '_'); i >= 0 {
		token = contextID[:i]
	}
	switch {
	case strings.Contains(token, "Instant"):
		return PeriodInstant, nil
	case strings.Contains(token, "Duration"):
		return PeriodDuration, nil
	default:
		return "", errPeriodTypeUnknown
	}
}
