package audiocarve

import (
	"github.com/himanishpuri/AudioCarve/pkg/audiocarve/storage"
	"github.com/himanishpuri/AudioCarve/pkg/models"
)

// storageAdapter adapts the storage.DBClient to implement the Catalog interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteCatalog opens (or creates) a SQLite catalog at dbPath.
func NewSQLiteCatalog(dbPath string) (Catalog, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) CreateScan(imagePath string, imageSize int64, blockSize int) (string, error) {
	return s.db.CreateScan(imagePath, imageSize, blockSize)
}

func (s *storageAdapter) FinishScan(scanID string, blocks int64, counts models.ClassCounts, runCount int) error {
	return s.db.FinishScan(scanID, blocks, counts, runCount)
}

func (s *storageAdapter) AddRun(run models.Run) error {
	return s.db.AddRun(run)
}

func (s *storageAdapter) ListScans() ([]models.Scan, error) {
	rows, err := s.db.ListScans()
	if err != nil {
		return nil, err
	}

	scans := make([]models.Scan, len(rows))
	for i, row := range rows {
		scans[i] = models.Scan{
			ID:            row.ID,
			ImagePath:     row.ImagePath,
			ImageSize:     row.ImageSize,
			BlockSize:     row.BlockSize,
			BlocksScanned: row.BlocksScanned,
			Counts: models.ClassCounts{
				Empty:   row.EmptyBlocks,
				Silence: row.SilenceBlocks,
				Noise:   row.NoiseBlocks,
				Audio:   row.AudioBlocks,
			},
			RunCount:  row.RunCount,
			StartedAt: row.StartedAt,
		}
		if row.FinishedAt != nil {
			scans[i].FinishedAt = *row.FinishedAt
		}
	}
	return scans, nil
}

func (s *storageAdapter) ListRuns(scanID string) ([]models.Run, error) {
	rows, err := s.db.ListRuns(scanID)
	if err != nil {
		return nil, err
	}

	out := make([]models.Run, len(rows))
	for i, row := range rows {
		out[i] = models.Run{
			ScanID:          row.ScanID,
			Ordinal:         row.Ordinal,
			StartBlock:      row.StartBlock,
			EndBlock:        row.EndBlock,
			Offset:          row.Offset,
			Size:            row.Size,
			RawPath:         row.RawPath,
			WavPath:         row.WavPath,
			SpectrogramPath: row.SpectrogramPath,
			Score:           row.Score,
			Flatness:        row.Flatness,
		}
	}
	return out, nil
}

func (s *storageAdapter) DeleteScan(scanID string) error {
	return s.db.DeleteScanByID(scanID)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

// nopCatalog is used when no database path is configured.
type nopCatalog struct{}

func (nopCatalog) CreateScan(string, int64, int) (string, error)           { return "", nil }
func (nopCatalog) FinishScan(string, int64, models.ClassCounts, int) error { return nil }
func (nopCatalog) AddRun(models.Run) error                                 { return nil }
func (nopCatalog) ListScans() ([]models.Scan, error)                       { return nil, nil }
func (nopCatalog) ListRuns(string) ([]models.Run, error)                   { return nil, nil }
func (nopCatalog) DeleteScan(string) error                                 { return nil }
func (nopCatalog) Close() error                                            { return nil }
