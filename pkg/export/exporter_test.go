package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tokgrab/pkg/config"
	"tokgrab/pkg/harvest"
	"tokgrab/pkg/logger"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		owner    string
		date     time.Time
		suffix   string
		expected string
	}{
		{"alice", time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), "links", "alice_2025_03_07_links.txt"},
		{"bob", time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), "feed", "bob_2024_12_31_feed.txt"},
		{"carol", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "links", "carol_2026_01_01_links.txt"},
	}

	for _, test := range tests {
		if got := Filename(test.owner, test.date, test.suffix); got != test.expected {
			t.Errorf("Filename(%s, %v, %s): expected %s, got %s", test.owner, test.date, test.suffix, test.expected, got)
		}
	}
}

func TestExportWritesNewlineJoinedURLs(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(config.ExportConfig{Directory: dir, Suffix: "links"}, logger.NewTestLogger())
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}

	rs := &harvest.ResultSet{
		Owner: "alice",
		Links: []harvest.Link{
			{RawURL: "https://www.tiktok.com/@alice/video/1", Kind: harvest.KindVideo, Owner: "alice"},
			{RawURL: "https://www.tiktok.com/@alice/photo/3", Kind: harvest.KindPhoto, Owner: "alice"},
		},
		Candidates: 3,
	}

	path, err := e.Export(rs, time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if filepath.Base(path) != "alice_2025_03_07_links.txt" {
		t.Errorf("Unexpected artifact name: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	expected := "https://www.tiktok.com/@alice/video/1\nhttps://www.tiktok.com/@alice/photo/3"
	if string(data) != expected {
		t.Errorf("Expected %q, got %q", expected, string(data))
	}
}

func TestExportLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(config.ExportConfig{Directory: dir, Suffix: "links"}, logger.NewTestLogger())
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}

	rs := &harvest.ResultSet{Owner: "alice"}
	if _, err := e.Export(rs, time.Now()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Errorf("Temporary file left behind: %s", entry.Name())
		}
	}
}

func TestNewExporterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := NewExporter(config.ExportConfig{Directory: dir, Suffix: "links"}, logger.NewTestLogger()); err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Expected output directory to exist: %v", err)
	}
}

func TestExportOverwritesPreviousRun(t *testing.T) {
	dir := t.TempDir()
	e, err := NewExporter(config.ExportConfig{Directory: dir, Suffix: "links"}, logger.NewTestLogger())
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}

	date := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	first := &harvest.ResultSet{Owner: "alice", Links: []harvest.Link{{RawURL: "https://www.tiktok.com/@alice/video/1"}}}
	second := &harvest.ResultSet{Owner: "alice", Links: []harvest.Link{{RawURL: "https://www.tiktok.com/@alice/video/2"}}}

	if _, err := e.Export(first, date); err != nil {
		t.Fatalf("First export failed: %v", err)
	}
	path, err := e.Export(second, date)
	if err != nil {
		t.Fatalf("Second export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read artifact: %v", err)
	}
	if string(data) != "https://www.tiktok.com/@alice/video/2" {
		t.Errorf("Expected the later run to win, got %q", string(data))
	}
}
