package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"

	"jsvensson/matdeals/internal/scraper"
	"jsvensson/matdeals/logger"
	apperrors "jsvensson/matdeals/pkg/errors"
)

// FileExporter writes the run's offers as a JSON array to a fixed path so the
// consumer always finds the latest complete snapshot.
type FileExporter struct {
	path string
}

func NewFileExporter(path string) *FileExporter {
	return &FileExporter{path: path}
}

// Export serializes records and atomically replaces the output file. A nil
// slice is written as an empty array so downstream parsing never sees null.
func (e *FileExporter) Export(records []scraper.OfferRecord) error {
	log := logger.ForExporter()

	if records == nil {
		records = []scraper.OfferRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return apperrors.NewExport("failed to marshal offers", err)
	}

	dir := filepath.Dir(e.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.NewExport("failed to create output directory", err)
		}
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.NewExport("failed to write temporary output file", err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		return apperrors.NewExport("failed to replace output file", err)
	}

	log.Info().Int("count", len(records)).Str("path", e.path).Msg("offers exported")
	return nil
}
