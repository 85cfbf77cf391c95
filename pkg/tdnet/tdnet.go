// Package tdnet lists same-day corporate disclosures from TDnet
// (release.tdnet.info), the Tokyo Stock Exchange's disclosure feed.
package tdnet

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/nk-xbrl/jpxbrl/pkg/xbrl"
)

const (
	baseURL    = "https://www.release.tdnet.info/inbs/"
	maxRetries = 10
	retryDelay = 10 * time.Second
)

var log *zap.SugaredLogger = zap.NewNop().Sugar()

// SetLogger replaces the package logger used to report page fetches and
// retry backoff. Unset, the package logs nothing.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		log = l
	}
}

// DisclosureRecord is one row of a TDnet listing page.
type DisclosureRecord struct {
	Date    time.Time
	Time    string
	Code    string
	Name    string
	Title   string
	PDFURL  string
	XBRLURL string
	Place   string
	History string
}

// ListDisclosures fetches every page of the TDnet listing for date, stopping
// when the server returns 404 for the next page. Non-404 failures are
// retried up to maxRetries times with a retryDelay pause between attempts,
// matching the original scraper's backoff; exhausting retries is a hard
// failure, since a partial listing would silently under-report disclosures.
func ListDisclosures(ctx context.Context, date time.Time) ([]DisclosureRecord, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	var records []DisclosureRecord
	for page := 1; ; page++ {
		url := fmt.Sprintf("%sI_list_%03d_%s", baseURL, page, date.Format("20060102"))

		body, done, err := fetchPage(ctx, client, url)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}

		pageRecords, err := parseListingPage(body, date)
		if err != nil {
			return nil, err
		}
		log.Debugw("parsed tdnet listing page", "page", page, "records", len(pageRecords))
		records = append(records, pageRecords...)
	}

	log.Infow("listed tdnet disclosures", "date", date.Format("2006-01-02"), "count", len(records))
	return records, nil
}

// fetchPage retries transient failures, returning (nil, true, nil) once the
// server answers 404 for a page past the end of the listing.
func fetchPage(ctx context.Context, client *http.Client, pageURL string) (*html.Node, bool, error) {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, false, &xbrl.AnalysisError{Op: "build tdnet request", Context: pageURL, Err: err}
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Warnw("tdnet fetch attempt failed", "url", pageURL, "attempt", attempt, "error", err)
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return nil, true, nil
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			log.Warnw("tdnet fetch attempt returned non-OK status", "url", pageURL, "attempt", attempt, "status", resp.StatusCode)
			continue
		}

		doc, err := html.Parse(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, false, &xbrl.AnalysisError{Op: "parse tdnet listing page", Context: pageURL, Err: err}
		}
		return doc, false, nil
	}

	return nil, false, &xbrl.AnalysisError{Op: "fetch tdnet listing page", Context: pageURL, Err: errRetriesExhausted}
}

func parseListingPage(doc *html.Node, date time.Time) ([]DisclosureRecord, error) {
	table := findTableByID(doc, "main-list-table")
	if table == nil {
		return nil, nil
	}

	var records []DisclosureRecord
	for _, tr := range findAll(table, "tr") {
		rec := DisclosureRecord{Date: date}
		for _, td := range findAll(tr, "td") {
			class, _ := attrVal(td, "class")
			switch {
			case strings.Contains(class, "kjTime"):
				rec.Time = strings.TrimSpace(innerText(td))
			case strings.Contains(class, "kjCode"):
				rec.Code = strings.TrimSpace(innerText(td))
			case strings.Contains(class, "kjName"):
				rec.Name = strings.TrimSpace(innerText(td))
			case strings.Contains(class, "kjPlace"):
				rec.Place = strings.TrimSpace(innerText(td))
			case strings.Contains(class, "kjHistroy"), strings.Contains(class, "kjHistory"):
				rec.History = strings.TrimSpace(innerText(td))
			case strings.Contains(class, "kjTitle"):
				a := findFirst(td, "a")
				if a != nil {
					rec.Title = strings.TrimSpace(innerText(a))
					if href, ok := attrVal(a, "href"); ok {
						rec.PDFURL = resolveURL(href)
					}
				}
			case strings.Contains(class, "kjXbrl"):
				if a := findFirst(td, "a"); a != nil {
					if href, ok := attrVal(a, "href"); ok {
						rec.XBRLURL = resolveURL(href)
					}
				}
			}
		}
		if rec.Time != "" || rec.Code != "" {
			records = append(records, rec)
		}
	}
	return records, nil
}

func resolveURL(href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func findTableByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" {
		if v, ok := attrVal(n, "id"); ok && v == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTableByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

func findFirst(n *html.Node, tag string) *html.Node {
	all := findAll(n, tag)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

func attrVal(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
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
	return sb.String()
}
