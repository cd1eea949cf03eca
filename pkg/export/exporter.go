// Package export serializes a harvest result into a plain-text artifact
// with a deterministic, date-stamped name.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tokgrab/pkg/config"
	errs "tokgrab/pkg/errors"
	"tokgrab/pkg/harvest"
	"tokgrab/pkg/logger"
)

// Exporter writes result sets to the configured output directory
type Exporter struct {
	cfg    config.ExportConfig
	logger logger.Logger
}

// NewExporter creates an exporter. The output directory is created if it
// does not exist.
func NewExporter(cfg config.ExportConfig, log logger.Logger) (*Exporter, error) {
	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeExport, "failed to create output directory", err)
	}
	return &Exporter{cfg: cfg, logger: log}, nil
}

// Filename builds the artifact name for an owner and run date:
// <owner>_<year>_<2-digit-month>_<2-digit-day>_<suffix>.txt
func Filename(owner string, date time.Time, suffix string) string {
	return fmt.Sprintf("%s_%04d_%02d_%02d_%s.txt", owner, date.Year(), int(date.Month()), date.Day(), suffix)
}

// Export writes the result set's URLs, one per line, to a deterministically
// named file and returns its path. The file is staged under a temporary
// name and renamed into place so a crash never leaves a partial artifact.
func (e *Exporter) Export(rs *harvest.ResultSet, runDate time.Time) (string, error) {
	filename := filepath.Join(e.cfg.Directory, Filename(rs.Owner, runDate, e.cfg.Suffix))
	content := strings.Join(rs.URLs(), "\n")

	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeExport, "failed to create temporary file", err)
	}

	_, err = out.WriteString(content)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", errs.Wrap(errs.ErrorTypeExport, "failed to write artifact", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", errs.Wrap(errs.ErrorTypeExport, "failed to close artifact", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", errs.Wrap(errs.ErrorTypeExport, "failed to rename temporary file", err)
	}

	e.logger.InfoWithFields("result set exported", map[string]interface{}{
		"path":  filename,
		"owner": rs.Owner,
		"urls":  len(rs.Links),
	})

	return filename, nil
}
