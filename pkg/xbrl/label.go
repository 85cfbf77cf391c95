package xbrl

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// LabelRecord is one (element-id, label-role, label-text) triple produced
// by joining a label linkbase's loc -> labelArc -> label chain.
type LabelRecord struct {
	ID   string
	Role string
	Text string
}

// LabelKey indexes a label record by the pair label assignment actually
// looks up: element id and label role.
type LabelKey struct {
	ID   string
	Role string
}

// LabelIndex is the O(1) multi-map DESIGN NOTES calls for, in place of the
// linear scan a naive port would do.
type LabelIndex map[LabelKey]string

// ParseLabelLinkbase parses one label linkbase file into its flat record
// list via the loc -> labelArc -> label join.
func ParseLabelLinkbase(r io.Reader) ([]LabelRecord, error) {
	dec := xml.NewDecoder(r)

	locs := make(map[string]string)   // xlink:label -> href
	labels := make(map[string]string) // xlink:label -> text, keyed additionally by role below
	labelRoles := make(map[string]string)
	type arcPair struct{ from, to string }
	var arcs []arcPair

	var inLabel bool
	var labelKey, labelRole string
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &AnalysisError{Op: "decode label linkbase", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "loc":
				label := attr(t, "label")
				href := attr(t, "href")
				locs[label] = href
			case "labelArc":
				arcs = append(arcs, arcPair{from: attr(t, "from"), to: attr(t, "to")})
			case "label":
				inLabel = true
				labelKey = attr(t, "label")
				labelRole = attr(t, "role")
				if labelRole == "" {
					labelRole = StandardLabelRole
				}
				text.Reset()
			}
		case xml.CharData:
			if inLabel {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "label" && inLabel {
				inLabel = false
				compositeKey := labelKey + "\x00" + labelRole
				labels[compositeKey] = strings.TrimSpace(text.String())
				labelRoles[compositeKey] = labelRole
			}
		}
	}

	var records []LabelRecord
	for _, a := range arcs {
		href, ok := locs[a.from]
		if !ok {
			continue
		}
		id := fragmentOf(href)
		for key, txt := range labels {
			parts := strings.SplitN(key, "\x00", 2)
			if len(parts) != 2 || parts[0] != a.to {
				continue
			}
			records = append(records, LabelRecord{ID: id, Role: parts[1], Text: txt})
		}
	}

	return records, nil
}

func buildLabelIndex(records []LabelRecord) LabelIndex {
	idx := make(LabelIndex, len(records))
	for _, r := range records {
		idx[LabelKey{ID: r.ID, Role: r.Role}] = r.Text
	}
	return idx
}

// labelFile pairs one label linkbase's index with the URL prefix (its XSD
// directory) used to decide which node it covers.
type labelFile struct {
	urlPrefix string
	index     LabelIndex
}

// LabelAnalyzer assigns human-readable labels to nodes from one or more
// enumerated label linkbase files, in the order they were added.
type LabelAnalyzer struct {
	files []labelFile
}

// NewLabelAnalyzer creates an empty label analyzer.
func NewLabelAnalyzer() *LabelAnalyzer {
	return &LabelAnalyzer{}
}

// AddFile registers one label linkbase's records, associated with the URL
// prefix (directory) of the XSD documents it covers.
func (a *LabelAnalyzer) AddFile(urlPrefix string, records []LabelRecord) {
	a.files = append(a.files, labelFile{urlPrefix: urlPrefix, index: buildLabelIndex(records)})
}

// Label resolves the label text for an element id under the given XSD
// directory, preferring preferredRole and falling back to the standard
// label role. The file chosen is the first enumerated whose URL prefix
// matches xsdDir.
func (a *LabelAnalyzer) Label(xsdDir, id, preferredRole string) (string, bool) {
	for _, f := range a.files {
		if !strings.HasPrefix(xsdDir, f.urlPrefix) {
			continue
		}
		if preferredRole != "" {
			if t, ok := f.index[LabelKey{ID: id, Role: preferredRole}]; ok {
				return t, true
			}
		}
		if t, ok := f.index[LabelKey{ID: id, Role: StandardLabelRole}]; ok {
			return t, true
		}
		return "", false
	}
	return "", false
}

// EnrichLabels annotates every content node under the given role with its
// resolved label, using the node's preferred-label role when set.
func EnrichLabels(t *LinkbaseTree, roleShortName string, analyzer *LabelAnalyzer) error {
	roleHandle, ok := t.RoleHandle(roleShortName)
	if !ok {
		return &AnalysisError{Op: "enrich labels", Role: roleShortName, Err: errRoleNotFound}
	}

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
		label, found := analyzer.Label(n.xsdURI(), n.id, n.preferredLabel)
		if found {
			n.label = label
		}
	}

	return nil
}

// LabelFileLoader resolves linkbaseRef locations from a filing's XSD and
// fetches their bytes; pkg/source implements this over the XML Source
// Provider.
type LabelFileLoader interface {
	LinkbaseRefs(ctx context.Context, xsdURI string) ([]string, error)
	Fetch(ctx context.Context, location string) (io.Reader, error)
}

// LoadLabels enumerates xsdURI's linkbaseRefs via loader, fetches the ones
// that name a label linkbase, and assembles a LabelAnalyzer from their
// records, consulting and populating the on-disk record cache under
// cacheDir so repeat runs over the same filing skip the network entirely.
func LoadLabels(ctx context.Context, loader LabelFileLoader, xsdURI, cacheDir string) (*LabelAnalyzer, error) {
	refs, err := loader.LinkbaseRefs(ctx, xsdURI)
	if err != nil {
		return nil, err
	}

	base := dirOf(xsdURI)
	analyzer := NewLabelAnalyzer()
	for _, href := range refs {
		if !isLabelLinkbaseHref(href) {
			continue
		}
		abs := resolveHref(href, base)

		records, hit, err := LoadCachedLabelRecords(cacheDir, abs)
		if err != nil {
			return nil, err
		}
		if !hit {
			r, err := loader.Fetch(ctx, abs)
			if err != nil {
				return nil, err
			}
			records, err = ParseLabelLinkbase(r)
			if err != nil {
				return nil, err
			}
			if err := StoreCachedLabelRecords(cacheDir, abs, records); err != nil {
				return nil, err
			}
		}
		analyzer.AddFile(dirOf(abs), records)
	}
	return analyzer, nil
}

func dirOf(uri string) string {
	i := strings.LastIndex(uri, "/")
	if i < 0 {
		return ""
	}
	return uri[:i+1]
}

// isLabelLinkbaseHref reports whether href names a label linkbase file, per
// the naming conventions used across Japanese filer taxonomies.
func isLabelLinkbaseHref(href string) bool {
	return strings.HasSuffix(href, "_lab.xml") ||
		strings.HasSuffix(href, "-lab.xml") ||
		strings.Contains(href, "lab_full_ifrs-ja")
}

var slugPattern = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func slugify(s string) string {
	return slugPattern.ReplaceAllString(s, "_")
}

// labelCachePath returns the labfile_structure_<slug>_<sha256> path for a
// label linkbase URL, directly inside cacheDir.
func labelCachePath(cacheDir, fileURL string) string {
	sum := sha256.Sum256([]byte(fileURL))
	return filepath.Join(cacheDir, "labfile_structure_"+slugify(fileURL)+"_"+hex.EncodeToString(sum[:]))
}

// LoadCachedLabelRecords reads a previously cached record list for fileURL,
// if present.
func LoadCachedLabelRecords(cacheDir, fileURL string) ([]LabelRecord, bool, error) {
	path := labelCachePath(cacheDir, fileURL)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &AnalysisError{Op: "read label cache", Err: err}
	}

	var records []LabelRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&records); err != nil {
		return nil, false, &AnalysisError{Op: "decode label cache", Err: err}
	}
	return records, true, nil
}

// StoreCachedLabelRecords writes records to the on-disk cache for fileURL.
func StoreCachedLabelRecords(cacheDir, fileURL string, records []LabelRecord) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return &AnalysisError{Op: "create label cache dir", Err: err}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(records); err != nil {
		return &AnalysisError{Op: "encode label cache", Err: err}
	}

	path := labelCachePath(cacheDir, fileURL)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &AnalysisError{Op: "write label cache", Err: err}
	}
	return nil
}
