package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/AudioCarve/pkg/models"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) (*DBClient, string) {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test_audiocarve.sqlite3")

	client, err := NewDBClientWithPath(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test DB client: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
	})

	return client, dbPath
}

func TestNewDBClientWithPath(t *testing.T) {
	client, dbPath := setupTestDB(t)

	if client.DB == nil {
		t.Fatal("Expected non-nil GORM DB handle")
	}
	if client.db == nil {
		t.Fatal("Expected non-nil sql.DB handle")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
}

func TestNewDBClientWithNestedPath(t *testing.T) {
	customPath := filepath.Join(t.TempDir(), "subdir", "custom.db")

	client, err := NewDBClientWithPath(customPath)
	if err != nil {
		t.Fatalf("Failed to create DB client with nested path: %v", err)
	}
	defer client.Close()

	if _, err := os.Stat(customPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", customPath)
	}
}

func TestCreateAndFinishScan(t *testing.T) {
	client, _ := setupTestDB(t)

	scanID, err := client.CreateScan("/images/card.dmg", 10<<20, 1<<20)
	if err != nil {
		t.Fatalf("CreateScan failed: %v", err)
	}
	if len(scanID) != 36 {
		t.Errorf("Expected UUID scan id, got %q", scanID)
	}

	scan, err := client.GetScanByID(scanID)
	if err != nil {
		t.Fatalf("GetScanByID failed: %v", err)
	}
	if scan.FinishedAt != nil {
		t.Error("New scan should not be finished")
	}

	counts := models.ClassCounts{Empty: 4, Silence: 2, Noise: 1, Audio: 3}
	if err := client.FinishScan(scanID, 10, counts, 2); err != nil {
		t.Fatalf("FinishScan failed: %v", err)
	}

	scan, err = client.GetScanByID(scanID)
	if err != nil {
		t.Fatalf("GetScanByID failed: %v", err)
	}
	if scan.FinishedAt == nil {
		t.Error("Expected finished_at to be set")
	}
	if scan.BlocksScanned != 10 || scan.AudioBlocks != 3 || scan.EmptyBlocks != 4 || scan.RunCount != 2 {
		t.Errorf("Unexpected scan row: %+v", scan)
	}
}

func TestFinishUnknownScan(t *testing.T) {
	client, _ := setupTestDB(t)

	if err := client.FinishScan("00000000-0000-0000-0000-000000000000", 1, models.ClassCounts{}, 0); err == nil {
		t.Error("Expected error finishing an unknown scan")
	}
}

func TestAddAndListRuns(t *testing.T) {
	client, _ := setupTestDB(t)

	scanID, err := client.CreateScan("/images/card.dmg", 10<<20, 1<<20)
	if err != nil {
		t.Fatalf("CreateScan failed: %v", err)
	}

	for i, r := range []models.Run{
		{Ordinal: 2, StartBlock: 6, EndBlock: 7},
		{Ordinal: 1, StartBlock: 1, EndBlock: 3},
	} {
		r.ScanID = scanID
		r.WavPath = filepath.Join("/out", "run.wav")
		if err := client.AddRun(r); err != nil {
			t.Fatalf("AddRun %d failed: %v", i, err)
		}
	}

	rows, err := client.ListRuns(scanID)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(rows))
	}
	if rows[0].Ordinal != 1 || rows[1].Ordinal != 2 {
		t.Errorf("Runs should be ordered by ordinal, got %d, %d", rows[0].Ordinal, rows[1].Ordinal)
	}

	dup := models.Run{ScanID: scanID, Ordinal: 1}
	if err := client.AddRun(dup); err == nil {
		t.Error("Expected unique constraint error for duplicate ordinal")
	}
}

func TestListScans(t *testing.T) {
	client, _ := setupTestDB(t)

	for _, p := range []string{"/a.img", "/b.img"} {
		if _, err := client.CreateScan(p, 1, 1); err != nil {
			t.Fatalf("CreateScan(%s) failed: %v", p, err)
		}
	}

	scans, err := client.ListScans()
	if err != nil {
		t.Fatalf("ListScans failed: %v", err)
	}
	if len(scans) != 2 {
		t.Errorf("Expected 2 scans, got %d", len(scans))
	}
}

func TestDeleteScanByID(t *testing.T) {
	client, _ := setupTestDB(t)

	scanID, _ := client.CreateScan("/a.img", 1, 1)
	if err := client.AddRun(models.Run{ScanID: scanID, Ordinal: 1}); err != nil {
		t.Fatalf("AddRun failed: %v", err)
	}

	if err := client.DeleteScanByID(scanID); err != nil {
		t.Fatalf("DeleteScanByID failed: %v", err)
	}

	if _, err := client.GetScanByID(scanID); err == nil {
		t.Error("Scan should be gone after delete")
	}
	rows, err := client.ListRuns(scanID)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected runs to be deleted, found %d", len(rows))
	}
}

func TestDeleteUnknownScan(t *testing.T) {
	client, _ := setupTestDB(t)

	keep, _ := client.CreateScan("/keep.img", 1, 1)

	err := client.DeleteScanByID("00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrScanNotFound) {
		t.Fatalf("Expected ErrScanNotFound, got %v", err)
	}
	if _, err := client.GetScanByID(keep); err != nil {
		t.Errorf("Other scans should be untouched: %v", err)
	}
}

func TestGetUnknownScan(t *testing.T) {
	client, _ := setupTestDB(t)

	if _, err := client.GetScanByID("missing"); !errors.Is(err, ErrScanNotFound) {
		t.Errorf("Expected ErrScanNotFound, got %v", err)
	}
}

func TestNilClient(t *testing.T) {
	var c *DBClient
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil client should be a no-op, got %v", err)
	}
	if _, err := c.CreateScan("x", 0, 0); err == nil {
		t.Error("Expected error from nil client")
	}
}
