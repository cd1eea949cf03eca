// Package harvest reads the rendered link elements off a surface,
// classifies and deduplicates them, and attributes everything to the
// single dominant content owner by majority vote. None of the
// harvested URLs declare their owner explicitly; attribution comes
// from the path segment after the host marker.
package harvest

import (
	"context"
	"net/url"
	"strings"

	"tokgrab/pkg/config"
	"tokgrab/pkg/logger"
	"tokgrab/pkg/surface"
)

// Harvester extracts the dominant owner's content links from a surface
type Harvester struct {
	surface surface.Surface
	cfg     config.HarvestConfig
	logger  logger.Logger
}

// NewHarvester creates a harvester with the given classification rules
func NewHarvester(s surface.Surface, cfg config.HarvestConfig, log logger.Logger) *Harvester {
	return &Harvester{surface: s, cfg: cfg, logger: log}
}

// Extract reads the surface's current links and builds the ResultSet.
// Malformed individual URLs degrade gracefully: they either fail
// classification and are dropped, or lose their owner and are folded
// into the running majority. Running Extract twice on an unchanged
// surface yields identical results.
func (h *Harvester) Extract(ctx context.Context) (*ResultSet, error) {
	raw, err := h.surface.Links(ctx)
	if err != nil {
		return nil, err
	}

	// Classify and deduplicate per class with set membership;
	// encounter order is preserved for the tally below
	var videos, photos []string
	seenVideos := make(map[string]struct{})
	seenPhotos := make(map[string]struct{})

	for _, u := range raw {
		switch {
		case hasPathSegment(u, h.cfg.VideoSegment):
			if _, dup := seenVideos[u]; !dup {
				seenVideos[u] = struct{}{}
				videos = append(videos, u)
			}
		case hasPathSegment(u, h.cfg.PhotoSegment):
			if _, dup := seenPhotos[u]; !dup {
				seenPhotos[u] = struct{}{}
				photos = append(photos, u)
			}
		}
	}

	// Tally owners in encounter order, videos first. Strict
	// greater-than keeps the first owner to reach the maximum in
	// front on ties.
	tally := make(map[string]int)
	leader := ""
	best := 0

	links := make([]Link, 0, len(videos)+len(photos))
	attribute := func(u string, kind Kind) {
		owner := h.ownerOf(u)
		if owner == "" {
			// Ownerless links never open a bucket of their own;
			// they join whoever is leading right now
			owner = leader
			h.logger.DebugWithFields("link without owner folded into leader", map[string]interface{}{
				"url":    u,
				"leader": leader,
			})
		}
		tally[owner]++
		if tally[owner] > best {
			best = tally[owner]
			leader = owner
		}
		links = append(links, Link{RawURL: u, Kind: kind, Owner: owner})
	}

	for _, u := range videos {
		attribute(u, KindVideo)
	}
	for _, u := range photos {
		attribute(u, KindPhoto)
	}

	// Keep only the dominant owner's links; videos already precede
	// photos because they were attributed first
	kept := make([]Link, 0, len(links))
	for _, l := range links {
		if l.Owner == leader {
			kept = append(kept, l)
		}
	}

	h.logger.InfoWithFields("harvest completed", map[string]interface{}{
		"dominant_owner": leader,
		"candidates":     len(links),
		"kept":           len(kept),
	})

	return &ResultSet{
		Owner:      leader,
		Links:      kept,
		Candidates: len(links),
	}, nil
}

// ownerOf resolves the owner name from the path segment following the
// host marker. Returns "" when the segment is missing or lacks the
// owner sigil.
func (h *Harvester) ownerOf(raw string) string {
	parts := strings.Split(raw, "/")
	for i, part := range parts {
		if !strings.Contains(part, h.cfg.HostMarker) {
			continue
		}
		if i+1 >= len(parts) {
			return ""
		}
		designator := parts[i+1]
		if !strings.HasPrefix(designator, h.cfg.OwnerSigil) {
			return ""
		}
		return strings.TrimPrefix(designator, h.cfg.OwnerSigil)
	}
	return ""
}

// hasPathSegment reports whether the URL's path contains the given
// segment. Unparseable URLs fall back to a substring check so a single
// malformed link cannot abort a harvest.
func hasPathSegment(raw, segment string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.Contains(raw, "/"+segment+"/")
	}
	for _, part := range strings.Split(u.Path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}
