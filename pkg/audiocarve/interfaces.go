package audiocarve

import (
	"context"

	"github.com/himanishpuri/AudioCarve/pkg/models"
)

type Service interface {
	Scan(ctx context.Context) (*Report, error)
	Analyze(ctx context.Context) (*Analysis, error)
	Extract(ctx context.Context, analysis *Analysis) ([]Artifact, error)
	ListScans() ([]models.Scan, error)
	ListRuns(scanID string) ([]models.Run, error)
	DeleteScan(scanID string) error
	Close() error
}

// Catalog records scans and their extracted runs.
type Catalog interface {
	CreateScan(imagePath string, imageSize int64, blockSize int) (string, error)
	FinishScan(scanID string, blocks int64, counts models.ClassCounts, runCount int) error
	AddRun(run models.Run) error
	ListScans() ([]models.Scan, error)
	ListRuns(scanID string) ([]models.Run, error)
	DeleteScan(scanID string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
