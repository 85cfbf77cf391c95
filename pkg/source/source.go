// Package source fetches and caches the XML/HTML documents a filing is made
// of: taxonomy schemas, linkbases, and inline-XBRL instance documents. It is
// the one place in the module that touches the network or the local
// filesystem on the filing's behalf.
package source

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nk-xbrl/jpxbrl/pkg/xbrl"
)

// defaultMemCacheSize bounds the in-memory cache well above the document
// count of any single filing, so a normal run never evicts anything; it only
// protects long-lived batch processes (the TDnet scraper, run across many
// filings in one process) from unbounded growth.
const defaultMemCacheSize = 4096

// Provider fetches and caches XML/HTML documents by location (an absolute
// http(s) URL or a local filesystem path). Raw bytes are cached in-memory
// (LRU) and, for network fetches, on disk, so repeat Get calls for the same
// location return the same bytes without a second round trip.
type Provider struct {
	httpClient *http.Client
	cacheDir   string

	mem *lru.Cache[string, []byte]

	diskMu sync.Mutex
	log    *zap.SugaredLogger
}

// NewProvider creates a Provider that writes its disk cache under cacheDir
// and rate-limits outbound HTTP fetches to rateLimit requests/second (the
// polite default mirrors the one-second pause the listing scraper needs to
// stay welcome on TDnet).
func NewProvider(cacheDir string, rateLimit float64) (*Provider, error) {
	if rateLimit <= 0 {
		rateLimit = 1
	}
	mem, err := lru.New[string, []byte](defaultMemCacheSize)
	if err != nil {
		return nil, &xbrl.AnalysisError{Op: "create source cache", Err: err}
	}

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Limit(rateLimit), 1),
	}

	return &Provider{
		httpClient: &http.Client{Timeout: 30 * time.Second, Transport: transport},
		cacheDir:   cacheDir,
		mem:        mem,
		log:        zap.NewNop().Sugar(),
	}, nil
}

// SetLogger replaces the provider's logger, used to report cache hits and
// outbound fetches. A Provider logs nothing until this is called.
func (p *Provider) SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		p.log = l
	}
}

type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// Get returns the raw bytes at location, consulting the in-memory cache,
// then the disk cache (network locations only), before fetching.
func (p *Provider) Get(ctx context.Context, location string) ([]byte, error) {
	if b, ok := p.mem.Get(location); ok {
		p.log.Debugw("memory cache hit", "location", location)
		return b, nil
	}

	isNetwork := strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")

	if isNetwork {
		if b, ok, err := p.readDiskCache(location); err != nil {
			return nil, err
		} else if ok {
			p.log.Debugw("disk cache hit", "location", location)
			p.mem.Add(location, b)
			return b, nil
		}
	}

	p.log.Infow("fetching document", "location", location, "network", isNetwork)

	var b []byte
	var err error
	if isNetwork {
		b, err = p.fetchHTTP(ctx, location)
	} else {
		b, err = os.ReadFile(location)
	}
	if err != nil {
		p.log.Warnw("fetch failed", "location", location, "error", err)
		return nil, err
	}

	p.mem.Add(location, b)
	if isNetwork {
		if err := p.writeDiskCache(location, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// fetchHTTP performs the request and only inspects/closes the response after
// confirming the request itself succeeded, avoiding the conditionally-closed
// response the original downloader risked when requests.get raised before r
// was ever assigned.
func (p *Provider) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, &xbrl.AnalysisError{Op: "build fetch request", Context: location, Err: err}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &xbrl.AnalysisError{Op: "fetch document", Context: location, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &xbrl.AnalysisError{Op: "fetch document", Context: location, Err: errNonOKStatus(resp.StatusCode)}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &xbrl.AnalysisError{Op: "read fetched document", Context: location, Err: err}
	}
	return b, nil
}

var cacheSlugPattern = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func diskCachePath(cacheDir, location string) string {
	sum := sha256.Sum256([]byte(location))
	slug := cacheSlugPattern.ReplaceAllString(location, "_")
	return filepath.Join(cacheDir, "xml_text_"+slug+"_"+hex.EncodeToString(sum[:]))
}

func (p *Provider) readDiskCache(location string) ([]byte, bool, error) {
	p.diskMu.Lock()
	defer p.diskMu.Unlock()

	path := diskCachePath(p.cacheDir, location)
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &xbrl.AnalysisError{Op: "read disk cache", Context: location, Err: err}
	}
	return b, true, nil
}

func (p *Provider) writeDiskCache(location string, b []byte) error {
	p.diskMu.Lock()
	defer p.diskMu.Unlock()

	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return &xbrl.AnalysisError{Op: "create disk cache dir", Err: err}
	}
	path := diskCachePath(p.cacheDir, location)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return &xbrl.AnalysisError{Op: "write disk cache", Context: location, Err: err}
	}
	return nil
}

// ElementDecls implements xbrl.SchemaLoader by fetching and parsing an XSD
// document's element declarations.
func (p *Provider) ElementDecls(ctx context.Context, xsdURI string) (map[string]xbrl.ElementDecl, error) {
	b, err := p.Get(ctx, xsdURI)
	if err != nil {
		return nil, err
	}
	return xbrl.ParseXSDElementDecls(bytes.NewReader(b))
}

// FetchLinkbase fetches href and parses it into a LinkbaseTree of the given
// kind, rebasing relative locator hrefs against baseURI.
func (p *Provider) FetchLinkbase(ctx context.Context, kind xbrl.LinkKind, href, baseURI string) (*xbrl.LinkbaseTree, error) {
	b, err := p.Get(ctx, href)
	if err != nil {
		return nil, err
	}
	return xbrl.BuildLinkbaseTree(kind, bytes.NewReader(b), baseURI)
}

// AddInlineDocument fetches uri and feeds it to analyzer as one inline-XBRL
// HTML document.
func (p *Provider) AddInlineDocument(ctx context.Context, analyzer *xbrl.Analyzer, uri string) error {
	b, err := p.Get(ctx, uri)
	if err != nil {
		return err
	}
	return analyzer.AddDocument(bytes.NewReader(b))
}

// LinkbaseRefs implements xbrl.LabelFileLoader by scanning xsdURI's
// linkbaseRef elements for label linkbase locations.
func (p *Provider) LinkbaseRefs(ctx context.Context, xsdURI string) ([]string, error) {
	b, err := p.Get(ctx, xsdURI)
	if err != nil {
		return nil, err
	}

	var out []string
	dec := xml.NewDecoder(bytes.NewReader(b))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &xbrl.AnalysisError{Op: "scan linkbaseRef", Context: xsdURI, Err: err}
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "linkbaseRef" {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local == "href" {
				out = append(out, a.Value)
			}
		}
	}
	return out, nil
}

// Fetch implements xbrl.LabelFileLoader.
func (p *Provider) Fetch(ctx context.Context, location string) (io.Reader, error) {
	b, err := p.Get(ctx, location)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

type errNonOKStatus int

func (e errNonOKStatus) Error() string {
	return "unexpected status " + http.StatusText(int(e))
}
