package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"prediction-league/logging"
	"prediction-league/models"

	"github.com/itbasis/go-clock"
)

const (
	backupPrefix       = "backup_"
	backupLayout       = "2006-01-02_15-04-05"
	backupMetadataFile = "metadata.json"
	backupFormat       = "1"
	schedulerPeriod    = time.Hour
	backupTimeLayout   = "15:04"
)

// BackupOptions configures a BackupService.
type BackupOptions struct {
	BackupDir string
	LeagueIDs []string
}

// BackupService snapshots league documents to dated directories on disk and
// writes them back on restore.
type BackupService struct {
	store     DocumentStore
	clock     clock.Clock
	backupDir string
	leagueIDs []string
	logger    *logging.Logger
}

// BackupInfo describes one backup directory.
type BackupInfo struct {
	Timestamp string    `json:"timestamp"`
	CreatedAt time.Time `json:"createdAt"`
	Size      int64     `json:"size"`
	Leagues   []string  `json:"leagues"`
}

type backupMetadata struct {
	Timestamp string    `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
	Leagues   []string  `json:"leagues"`
	Format    string    `json:"format"`
}

// leagueSnapshot is the content of one <league>.json file.
type leagueSnapshot struct {
	LeagueID string                 `json:"leagueId"`
	Version  int64                  `json:"version"`
	Document *models.LeagueDocument `json:"document"`
}

func NewBackupService(store DocumentStore, clk clock.Clock, opts BackupOptions) *BackupService {
	return &BackupService{
		store:     store,
		clock:     clk,
		backupDir: opts.BackupDir,
		leagueIDs: append([]string(nil), opts.LeagueIDs...),
		logger:    logging.WithPrefix("BackupService"),
	}
}

// CreateBackup writes every configured league into a new backup directory and
// returns its timestamp. Leagues that were never stored are skipped.
func (bs *BackupService) CreateBackup(ctx context.Context) (string, error) {
	now := bs.clock.Now().UTC()
	timestamp := now.Format(backupLayout)
	backupPath := filepath.Join(bs.backupDir, backupPrefix+timestamp)

	bs.logger.Infof("Starting backup to %s", backupPath)
	if err := os.MkdirAll(backupPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	saved := make([]string, 0, len(bs.leagueIDs))
	for _, id := range bs.leagueIDs {
		if err := checkLeagueFileName(id); err != nil {
			return "", err
		}
		doc, version, err := bs.store.Get(ctx, id)
		if errors.Is(err, models.ErrLeagueNotFound) {
			bs.logger.Warnf("League %s has no stored document, skipping", id)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read league %s: %w", id, err)
		}
		snap := leagueSnapshot{LeagueID: id, Version: version, Document: doc}
		if err := writeJSONFile(filepath.Join(backupPath, id+".json"), snap); err != nil {
			return "", fmt.Errorf("failed to back up league %s: %w", id, err)
		}
		saved = append(saved, id)
		bs.logger.Debugf("Backed up league %s at version %d", id, version)
	}

	meta := backupMetadata{Timestamp: timestamp, CreatedAt: now, Leagues: saved, Format: backupFormat}
	if err := writeJSONFile(filepath.Join(backupPath, backupMetadataFile), meta); err != nil {
		bs.logger.Warnf("Failed to write backup metadata: %v", err)
	}

	bs.logger.Infof("Backup %s completed with %d leagues", timestamp, len(saved))
	return timestamp, nil
}

// RestoreBackup overwrites the stored leagues with the documents of one backup.
// With no league ids every league recorded in the backup is restored.
func (bs *BackupService) RestoreBackup(ctx context.Context, timestamp string, leagueIDs []string) error {
	backupPath := filepath.Join(bs.backupDir, backupPrefix+timestamp)
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup not found: %s", backupPath)
	}

	if len(leagueIDs) == 0 {
		meta, err := loadBackupMetadata(backupPath)
		if err != nil {
			bs.logger.Warnf("Could not load backup metadata, restoring configured leagues: %v", err)
			leagueIDs = bs.leagueIDs
		} else {
			leagueIDs = meta.Leagues
		}
	}

	// Validate everything before the first write.
	snaps := make([]leagueSnapshot, 0, len(leagueIDs))
	for _, id := range leagueIDs {
		if err := checkLeagueFileName(id); err != nil {
			return err
		}
		var snap leagueSnapshot
		if err := readJSONFile(filepath.Join(backupPath, id+".json"), &snap); err != nil {
			return fmt.Errorf("failed to read backup of league %s: %w", id, err)
		}
		if snap.Document == nil {
			return &models.ValidationError{Field: "document", Reason: fmt.Sprintf("backup of league %s is empty", id)}
		}
		snap.Document.EnsureMaps()
		if err := snap.Document.Validate(); err != nil {
			return fmt.Errorf("backup of league %s is invalid: %w", id, err)
		}
		snap.LeagueID = id
		snaps = append(snaps, snap)
	}

	for _, snap := range snaps {
		version, err := bs.store.Set(ctx, snap.LeagueID, snap.Document, AnyVersion)
		if err != nil {
			return fmt.Errorf("failed to restore league %s: %w", snap.LeagueID, err)
		}
		bs.logger.Infof("Restored league %s from %s (now version %d)", snap.LeagueID, timestamp, version)
	}
	return nil
}

// ListBackups returns the backups on disk, oldest first.
func (bs *BackupService) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(bs.backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		timestamp, ok := backupTimestamp(entry)
		if !ok {
			continue
		}
		backupPath := filepath.Join(bs.backupDir, entry.Name())
		info := BackupInfo{
			Timestamp: timestamp,
			Size:      backupSize(backupPath),
		}
		if meta, err := loadBackupMetadata(backupPath); err == nil {
			info.CreatedAt = meta.CreatedAt
			info.Leagues = meta.Leagues
		} else if created, err := time.ParseInLocation(backupLayout, timestamp, time.UTC); err == nil {
			info.CreatedAt = created
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].Timestamp < backups[j].Timestamp })
	return backups, nil
}

// CleanupOldBackups removes backups older than retentionDays and returns how
// many were removed. A non-positive retention keeps everything.
func (bs *BackupService) CleanupOldBackups(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		bs.logger.Info("Backup cleanup disabled (retention days <= 0)")
		return 0, nil
	}

	entries, err := os.ReadDir(bs.backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read backup directory: %w", err)
	}

	cutoff := bs.clock.Now().UTC().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, entry := range entries {
		timestamp, ok := backupTimestamp(entry)
		if !ok {
			continue
		}
		created, err := time.ParseInLocation(backupLayout, timestamp, time.UTC)
		if err != nil {
			bs.logger.Warnf("Skipping backup with unreadable name %s", entry.Name())
			continue
		}
		if !created.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(bs.backupDir, entry.Name())); err != nil {
			bs.logger.Warnf("Failed to remove old backup %s: %v", entry.Name(), err)
			continue
		}
		bs.logger.Infof("Removed old backup: %s", entry.Name())
		removed++
	}

	bs.logger.Infof("Cleanup completed. Removed %d old backups", removed)
	return removed, nil
}

// StartScheduler runs one backup a day once the wall clock passes backupTime
// (HH:MM, UTC). It checks hourly and stops when ctx is done.
func (bs *BackupService) StartScheduler(ctx context.Context, backupTime string, retentionDays int) error {
	if _, err := time.Parse(backupTimeLayout, backupTime); err != nil {
		return &models.ValidationError{Field: "backupTime", Reason: fmt.Sprintf("want HH:MM, got %q", backupTime)}
	}
	bs.logger.Infof("Starting backup scheduler. Daily backup at %s, retention: %d days", backupTime, retentionDays)

	ticker := bs.clock.Ticker(schedulerPeriod)
	go func() {
		defer ticker.Stop()

		lastBackupDate := ""
		for {
			select {
			case <-ctx.Done():
				bs.logger.Info("Backup scheduler stopped")
				return
			case <-ticker.C:
				lastBackupDate = bs.runIfDue(ctx, backupTime, retentionDays, lastBackupDate)
			}
		}
	}()
	return nil
}

// runIfDue performs the daily backup when it is due and returns the date of
// the most recent successful run.
func (bs *BackupService) runIfDue(ctx context.Context, backupTime string, retentionDays int, lastBackupDate string) string {
	now := bs.clock.Now().UTC()
	today := now.Format("2006-01-02")
	if lastBackupDate == today || now.Format(backupTimeLayout) < backupTime {
		return lastBackupDate
	}

	bs.logger.Info("Starting scheduled backup")
	if _, err := bs.CreateBackup(ctx); err != nil {
		bs.logger.Errorf("Scheduled backup failed: %v", err)
		return lastBackupDate
	}
	if _, err := bs.CleanupOldBackups(retentionDays); err != nil {
		bs.logger.Errorf("Backup cleanup failed: %v", err)
	}
	return today
}

func backupTimestamp(entry os.DirEntry) (string, bool) {
	if !entry.IsDir() || !strings.HasPrefix(entry.Name(), backupPrefix) {
		return "", false
	}
	return strings.TrimPrefix(entry.Name(), backupPrefix), true
}

func checkLeagueFileName(id string) error {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return &models.ValidationError{Field: "leagueId", Reason: fmt.Sprintf("%q cannot be used as a backup file name", id)}
	}
	return nil
}

func loadBackupMetadata(backupPath string) (*backupMetadata, error) {
	var meta backupMetadata
	if err := readJSONFile(filepath.Join(backupPath, backupMetadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func backupSize(backupPath string) int64 {
	var total int64
	_ = filepath.Walk(backupPath, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}

func writeJSONFile(path string, v interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func readJSONFile(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return json.NewDecoder(file).Decode(v)
}
