package docsrs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/depvet/depvet/pkg/cache"
	deperrors "github.com/depvet/depvet/pkg/errors"
	"github.com/depvet/depvet/pkg/integrations"
)

const (
	// warningClass marks a failed documentation build on a docs.rs page.
	warningClass = "warning"
	// menuLinkClass marks the navigation entries, one of which carries the
	// documentation coverage percentage.
	menuLinkClass = "pure-menu-link"
)

// Client provides access to docs.rs documentation pages for one crate.
// It scrapes the rendered HTML for build status and coverage, since docs.rs
// exposes neither through a stable API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	crate   string
}

// NewClient creates a docs.rs client for the given crate name.
func NewClient(backend cache.Cache, crate string, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "docsrs:", cacheTTL, nil),
		baseURL: "https://docs.rs",
		crate:   crate,
	}
}

// URL returns the canonical documentation page URL for the crate.
func (c *Client) URL() string {
	return fmt.Sprintf("%s/%s", c.baseURL, c.crate)
}

// PageExists reports whether the crate has a docs.rs page at all.
func (c *Client) PageExists(ctx context.Context, refresh bool) (bool, error) {
	var exists bool
	err := c.Cached(ctx, c.crate+":exists", refresh, &exists, func() error {
		ok, err := c.Head(ctx, c.URL())
		if err != nil {
			return err
		}
		exists = ok
		return nil
	})
	return exists, err
}

// BuildSucceeded reports whether the latest documentation build succeeded.
// docs.rs renders a warning element on pages whose build failed; a page
// without that marker is considered a successful build.
func (c *Client) BuildSucceeded(ctx context.Context, refresh bool) (bool, error) {
	page, err := c.page(ctx, refresh)
	if err != nil {
		return false, err
	}
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return false, err
	}
	return !hasClass(doc, warningClass), nil
}

// CoverageScore extracts the documentation coverage percentage from the
// page's navigation menu. Returns a COVERAGE_UNPARSEABLE error when no menu
// entry carries a percentage or the value does not parse; callers treat
// that as "coverage unknown" rather than a hard failure.
func (c *Client) CoverageScore(ctx context.Context, refresh bool) (int, error) {
	page, err := c.page(ctx, refresh)
	if err != nil {
		return 0, err
	}
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return 0, err
	}

	raw := coverageText(doc)
	if raw == "" {
		return 0, deperrors.New(deperrors.ErrCodeCoverageUnparseable, "no coverage entry on docs page for %s", c.crate)
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return 0, deperrors.Wrap(deperrors.ErrCodeCoverageUnparseable, err, "parse coverage %q for %s", raw, c.crate)
	}
	return score, nil
}

// page fetches and caches the raw HTML of the crate's documentation page.
func (c *Client) page(ctx context.Context, refresh bool) (string, error) {
	var body string
	err := c.Cached(ctx, c.crate+":page", refresh, &body, func() error {
		text, err := c.GetText(ctx, c.URL())
		if err != nil {
			return err
		}
		body = text
		return nil
	})
	return body, err
}

// hasClass walks the HTML tree looking for any element carrying the class.
func hasClass(n *html.Node, class string) bool {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "class" && containsClass(attr.Val, class) {
				return true
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if hasClass(child, class) {
			return true
		}
	}
	return false
}

// coverageText finds the first menu-link element whose text contains a
// percent sign and returns the digits with whitespace and '%' stripped.
func coverageText(n *html.Node) string {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "class" && containsClass(attr.Val, menuLinkClass) {
				if text := nodeText(n); strings.Contains(text, "%") {
					// The menu entry mixes the percentage with label text;
					// keep only the token carrying the percent sign.
					for _, field := range strings.Fields(text) {
						if strings.Contains(field, "%") {
							return strings.ReplaceAll(field, "%", "")
						}
					}
				}
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if text := coverageText(child); text != "" {
			return text
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(nodeText(child))
	}
	return b.String()
}

func containsClass(attr, class string) bool {
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}
