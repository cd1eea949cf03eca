// Package pipeline composes the scroll driver, link harvester, and
// result exporter into one harvest run.
package pipeline

import (
	"context"
	"time"

	"tokgrab/pkg/config"
	"tokgrab/pkg/export"
	"tokgrab/pkg/harvest"
	"tokgrab/pkg/logger"
	"tokgrab/pkg/scroll"
	"tokgrab/pkg/surface"
)

// Summary reports one finished harvest run
type Summary struct {
	RunID        string
	Owner        string
	ArtifactPath string
	URLs         int
	Candidates   int
	Iterations   int
	Outcome      scroll.Outcome
	Elapsed      time.Duration
}

// Pipeline drives a surface to exhaustion, harvests the dominant
// owner's links, and exports them as a text artifact
type Pipeline struct {
	driver    *scroll.Driver
	harvester *harvest.Harvester
	exporter  *export.Exporter
	logger    logger.Logger

	// now is swappable for tests
	now func() time.Time
}

// New builds a pipeline around the given surface
func New(s surface.Surface, cfg *config.Config, log logger.Logger) (*Pipeline, error) {
	exporter, err := export.NewExporter(cfg.Export, log)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		driver:    scroll.NewDriver(s, cfg.Scroll, log),
		harvester: harvest.NewHarvester(s, cfg.Harvest, log),
		exporter:  exporter,
		logger:    log,
		now:       time.Now,
	}, nil
}

// Run scrolls the feed to exhaustion, then harvests and exports once.
// Scrolling and harvesting never overlap: the harvest callback fires
// only after the scroll session has ended.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	var rs *harvest.ResultSet
	var artifactPath string

	cb := func(ctx context.Context) error {
		var err error
		rs, err = p.harvester.Extract(ctx)
		if err != nil {
			return err
		}
		artifactPath, err = p.exporter.Export(rs, p.now())
		return err
	}

	result, err := p.driver.Run(ctx, cb, scroll.ModeNone)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:        result.SessionID,
		Owner:        rs.Owner,
		ArtifactPath: artifactPath,
		URLs:         len(rs.Links),
		Candidates:   rs.Candidates,
		Iterations:   result.Iterations,
		Outcome:      result.Outcome,
		Elapsed:      result.Elapsed,
	}

	p.logger.InfoWithFields("harvest run finished", map[string]interface{}{
		"run_id":     summary.RunID,
		"owner":      summary.Owner,
		"artifact":   summary.ArtifactPath,
		"urls":       summary.URLs,
		"candidates": summary.Candidates,
		"iterations": summary.Iterations,
		"outcome":    string(summary.Outcome),
	})

	return summary, nil
}
