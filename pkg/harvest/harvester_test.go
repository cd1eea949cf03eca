package harvest

import (
	"context"
	"reflect"
	"testing"

	"tokgrab/pkg/config"
	"tokgrab/pkg/logger"
)

// stubSurface serves a fixed link list
type stubSurface struct {
	links []string
	err   error
}

func (s *stubSurface) Extent(ctx context.Context) (int64, error)        { return 0, nil }
func (s *stubSurface) ScrollTo(ctx context.Context, extent int64) error { return nil }
func (s *stubSurface) Links(ctx context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.links, nil
}

func testHarvestConfig() config.HarvestConfig {
	return config.HarvestConfig{
		HostMarker:   "tiktok.com",
		OwnerSigil:   "@",
		VideoSegment: "video",
		PhotoSegment: "photo",
	}
}

func newTestHarvester(links []string) *Harvester {
	return NewHarvester(&stubSurface{links: links}, testHarvestConfig(), logger.NewTestLogger())
}

func TestExtractDominantOwnerScenario(t *testing.T) {
	h := newTestHarvester([]string{
		"https://www.tiktok.com/@alice/video/1",
		"https://www.tiktok.com/@bob/video/2",
		"https://www.tiktok.com/@alice/photo/3",
	})

	rs, err := h.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if rs.Owner != "alice" {
		t.Errorf("Expected dominant owner alice, got %q", rs.Owner)
	}

	expected := []string{
		"https://www.tiktok.com/@alice/video/1",
		"https://www.tiktok.com/@alice/photo/3",
	}
	if !reflect.DeepEqual(rs.URLs(), expected) {
		t.Errorf("Expected %v, got %v", expected, rs.URLs())
	}

	if rs.Candidates != 3 {
		t.Errorf("Expected 3 candidates, got %d", rs.Candidates)
	}
}

func TestExtractDiscardsNonContentLinks(t *testing.T) {
	h := newTestHarvester([]string{
		"https://www.tiktok.com/@alice/video/1",
		"https://www.tiktok.com/@alice",
		"https://www.tiktok.com/foryou",
		"https://www.tiktok.com/@alice/live",
	})

	rs, err := h.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if rs.Candidates != 1 {
		t.Errorf("Expected only the video link to survive classification, got %d candidates", rs.Candidates)
	}
}

func TestExtractDeduplicatesWithinClass(t *testing.T) {
	h := newTestHarvester([]string{
		"https://www.tiktok.com/@alice/video/1",
		"https://www.tiktok.com/@alice/video/1",
		"https://www.tiktok.com/@alice/video/1",
		"https://www.tiktok.com/@alice/photo/2",
		"https://www.tiktok.com/@alice/photo/2",
	})

	rs, err := h.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(rs.Links) != 2 {
		t.Fatalf("Expected 2 distinct links, got %d: %v", len(rs.Links), rs.URLs())
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	h := newTestHarvester([]string{
		"https://www.tiktok.com/@alice/video/1",
		"https://www.tiktok.com/@bob/video/2",
		"https://www.tiktok.com/@alice/video/1",
		"https://www.tiktok.com/@alice/photo/3",
	})

	ctx := context.Background()
	first, err := h.Extract(ctx)
	if err != nil {
		t.Fatalf("First extract failed: %v", err)
	}
	second, err := h.Extract(ctx)
	if err != nil {
		t.Fatalf("Second extract failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Extract is not idempotent: %+v vs %+v", first, second)
	}
}

func TestVideosPrecedePhotos(t *testing.T) {
	// Photos rendered before videos in the DOM; output must still
	// lead with videos
	h := newTestHarvester([]string{
		"https://www.tiktok.com/@alice/photo/10",
		"https://www.tiktok.com/@alice/photo/11",
		"https://www.tiktok.com/@alice/video/1",
	})

	rs, err := h.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(rs.Links) != 3 {
		t.Fatalf("Expected 3 links, got %d", len(rs.Links))
	}
	if rs.Links[0].Kind != KindVideo {
		t.Errorf("Expected the video first, got %s", rs.Links[0].Kind)
	}
	if rs.Links[1].Kind != KindPhoto || rs.Links[2].Kind != KindPhoto {
		t.Error("Expected photos after the video")
	}
}

func TestTieBreakFirstToReachMaximum(t *testing.T) {
	// alice and bob both end at 3, interleaved alice-first: alice
	// reaches every count first and keeps the lead
	h := newTestHarvester([]string{
		"https://www.tiktok.com/@alice/video/1",
		"https://www.tiktok.com/@bob/video/2",
		"https://www.tiktok.com/@alice/video/3",
		"https://www.tiktok.com/@bob/video/4",
		"https://www.tiktok.com/@alice/video/5",
		"https://www.tiktok.com/@bob/video/6",
	})

	rs, err := h.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if rs.Owner != "alice" {
		t.Errorf("Expected alice to win the tie, got %q", rs.Owner)
	}
}

func TestOwnerlessLinkFoldsIntoLeader(t *testing.T) {
	h := newTestHarvester([]string{
		"https://www.tiktok.com/@alice/video/1",
		"https://www.tiktok.com/video/99", // no owner designator
		"https://www.tiktok.com/@bob/video/2",
	})

	rs, err := h.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// The ownerless link counts for alice (leading when processed),
	// so alice ends 2-1 and the folded link is kept
	if rs.Owner != "alice" {
		t.Fatalf("Expected alice to stay dominant, got %q", rs.Owner)
	}
	if len(rs.Links) != 2 {
		t.Fatalf("Expected 2 links (alice's own plus the folded one), got %d: %v", len(rs.Links), rs.URLs())
	}
	if rs.Links[1].RawURL != "https://www.tiktok.com/video/99" {
		t.Errorf("Expected the ownerless link to be attributed to alice, got %v", rs.URLs())
	}
}

func TestOwnerOf(t *testing.T) {
	h := newTestHarvester(nil)

	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.tiktok.com/@alice/video/1", "alice"},
		{"https://tiktok.com/@bob/photo/2", "bob"},
		{"https://www.tiktok.com/video/3", ""},
		{"https://www.tiktok.com/discover/video/4", ""},
		{"https://example.org/@alice/video/5", ""},
		{"https://www.tiktok.com", ""},
	}

	for _, test := range tests {
		if got := h.ownerOf(test.url); got != test.expected {
			t.Errorf("ownerOf(%s): expected %q, got %q", test.url, test.expected, got)
		}
	}
}

func TestExtractEmptySurface(t *testing.T) {
	h := newTestHarvester(nil)

	rs, err := h.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rs.Owner != "" || len(rs.Links) != 0 || rs.Candidates != 0 {
		t.Errorf("Expected empty result set, got %+v", rs)
	}
}
