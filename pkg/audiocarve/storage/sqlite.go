package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/himanishpuri/AudioCarve/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const errDBClientNil = "db client is nil"

// ErrScanNotFound is returned when no scan has the requested id.
var ErrScanNotFound = errors.New("scan not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Scan struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	ImagePath     string `gorm:"index:idx_scan_image" json:"image_path"`
	ImageSize     int64  `json:"image_size"`
	BlockSize     int    `json:"block_size"`
	BlocksScanned int64  `json:"blocks_scanned"`
	EmptyBlocks   int64  `json:"empty_blocks"`
	SilenceBlocks int64  `json:"silence_blocks"`
	NoiseBlocks   int64  `json:"noise_blocks"`
	AudioBlocks   int64  `json:"audio_blocks"`
	RunCount      int    `json:"run_count"`
	StartedAt     time.Time
	FinishedAt    *time.Time
}

type Run struct {
	ID              uint    `gorm:"primaryKey;autoIncrement"`
	ScanID          string  `gorm:"type:varchar(36);uniqueIndex:idx_run_ordinal,priority:1" json:"scan_id"`
	Ordinal         int     `gorm:"uniqueIndex:idx_run_ordinal,priority:2" json:"ordinal"`
	StartBlock      int64   `json:"start_block"`
	EndBlock        int64   `json:"end_block"`
	Offset          int64   `json:"offset"`
	Size            int64   `json:"size"`
	RawPath         string  `json:"raw_path"`
	WavPath         string  `json:"wav_path"`
	SpectrogramPath string  `json:"spectrogram_path"`
	Score           float64 `json:"score"`
	Flatness        float64 `json:"flatness"`
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// the scan is single-threaded; one connection avoids SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Scan{}, &Run{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// CreateScan inserts a new scan row and returns its UUID.
func (c *DBClient) CreateScan(imagePath string, imageSize int64, blockSize int) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	scan := Scan{
		ID:        uuid.NewString(),
		ImagePath: imagePath,
		ImageSize: imageSize,
		BlockSize: blockSize,
		StartedAt: time.Now(),
	}
	if err := c.DB.Create(&scan).Error; err != nil {
		return "", fmt.Errorf("creating scan: %w", err)
	}
	return scan.ID, nil
}

// FinishScan stores the final block counts of a scan.
func (c *DBClient) FinishScan(scanID string, blocks int64, counts models.ClassCounts, runCount int) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	now := time.Now()
	res := c.DB.Model(&Scan{}).Where("id = ?", scanID).Updates(map[string]any{
		"blocks_scanned": blocks,
		"empty_blocks":   counts.Empty,
		"silence_blocks": counts.Silence,
		"noise_blocks":   counts.Noise,
		"audio_blocks":   counts.Audio,
		"run_count":      runCount,
		"finished_at":    &now,
	})
	if res.Error != nil {
		return fmt.Errorf("finishing scan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("finishing scan %s: %w", scanID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (c *DBClient) AddRun(r models.Run) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	row := Run{
		ScanID:          r.ScanID,
		Ordinal:         r.Ordinal,
		StartBlock:      r.StartBlock,
		EndBlock:        r.EndBlock,
		Offset:          r.Offset,
		Size:            r.Size,
		RawPath:         r.RawPath,
		WavPath:         r.WavPath,
		SpectrogramPath: r.SpectrogramPath,
		Score:           r.Score,
		Flatness:        r.Flatness,
	}
	if err := c.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("inserting run %d: %w", r.Ordinal, err)
	}
	return nil
}

func (c *DBClient) GetScanByID(scanID string) (*Scan, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var scan Scan
	if err := c.DB.Where("id = ?", scanID).First(&scan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrScanNotFound, scanID)
		}
		return nil, fmt.Errorf("loading scan %s: %w", scanID, err)
	}
	return &scan, nil
}

// ListScans returns all scans, most recent first.
func (c *DBClient) ListScans() ([]Scan, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var scans []Scan
	if err := c.DB.Order("started_at DESC").Find(&scans).Error; err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	return scans, nil
}

func (c *DBClient) ListRuns(scanID string) ([]Run, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []Run
	if err := c.DB.Where("scan_id = ?", scanID).Order("ordinal").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return rows, nil
}

// DeleteScanByID removes a scan and its runs. Unknown ids return ErrScanNotFound.
func (c *DBClient) DeleteScanByID(scanID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	if _, err := c.GetScanByID(scanID); err != nil {
		return err
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scan_id = ?", scanID).Delete(&Run{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", scanID).Delete(&Scan{}).Error; err != nil {
			return err
		}
		return nil
	})
}
