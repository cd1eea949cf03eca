package surface

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	errs "tokgrab/pkg/errors"
)

// Snapshot implements Surface over a static HTML document, typically a
// saved feed page. Its extent never grows, so a scroll session over a
// snapshot settles after a single stall window.
type Snapshot struct {
	links    []string
	extent   int64
	position int64
}

// NewSnapshot parses an HTML document. Relative hrefs are resolved
// against baseURL when one is given.
func NewSnapshot(r io.Reader, baseURL string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeSurface, "failed to parse snapshot", err)
	}

	var base *url.URL
	if baseURL != "" {
		base, err = url.Parse(baseURL)
		if err != nil {
			return nil, errs.Newf(errs.ErrorTypeInvalidArgument, "invalid base URL %q", baseURL)
		}
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "#") {
			return
		}
		if base != nil {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}
		links = append(links, href)
	})

	return &Snapshot{
		links:  links,
		extent: int64(len(doc.Text())),
	}, nil
}

// NewSnapshotFromFile reads and parses a saved HTML page
func NewSnapshotFromFile(path, baseURL string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeSurface, "failed to open snapshot file", err)
	}
	defer f.Close()
	return NewSnapshot(f, baseURL)
}

// Extent returns the fixed extent of the parsed document
func (s *Snapshot) Extent(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.extent, nil
}

// ScrollTo records the requested position; a snapshot cannot grow
func (s *Snapshot) ScrollTo(ctx context.Context, extent int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.position = extent
	return nil
}

// Links returns the anchors found in the document
func (s *Snapshot) Links(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, len(s.links))
	copy(out, s.links)
	return out, nil
}
