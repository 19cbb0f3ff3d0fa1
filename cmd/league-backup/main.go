package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"prediction-league/config"
	"prediction-league/database"
	"prediction-league/logging"
	"prediction-league/services"

	"github.com/itbasis/go-clock"
)

func main() {
	list := flag.Bool("list", false, "list available backups")
	restore := flag.String("restore", "", "restore the backup with this timestamp")
	yes := flag.Bool("yes", false, "skip the restore confirmation")
	cleanup := flag.Bool("cleanup", false, "remove backups older than BACKUP_RETENTION_DAYS")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig(nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logging.Fatalf("Failed to open %s store: %v", cfg.Database.Driver, err)
	}
	defer closeStore()

	backupService := services.NewBackupService(store, clock.New(), cfg.ToBackupOptions())

	switch {
	case *list:
		listBackups(backupService)
	case *restore != "":
		if !*yes && !confirm(fmt.Sprintf("Overwrite league %q with backup %s?", cfg.League.ID, *restore)) {
			fmt.Println("Restore cancelled")
			return
		}
		if err := backupService.RestoreBackup(ctx, *restore, nil); err != nil {
			logging.Fatalf("Restore failed: %v", err)
		}
		fmt.Printf("Restored backup %s\n", *restore)
	case *cleanup:
		removed, err := backupService.CleanupOldBackups(cfg.Backup.RetentionDays)
		if err != nil {
			logging.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Removed %d backups older than %d days\n", removed, cfg.Backup.RetentionDays)
	default:
		start := time.Now()
		timestamp, err := backupService.CreateBackup(ctx)
		if err != nil {
			logging.Fatalf("Backup failed: %v", err)
		}
		fmt.Printf("Backup %s written to %s in %v\n", timestamp, cfg.Backup.BackupDir, time.Since(start).Round(time.Millisecond))
	}
}

// openStore connects the database behind STORE_DRIVER. The in-memory store has
// nothing to back up.
func openStore(ctx context.Context, cfg *config.Config) (services.DocumentStore, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		db, err := database.NewMongoConnection(ctx, cfg.ToDatabaseConfig())
		if err != nil {
			return nil, nil, err
		}
		return database.NewMongoLeagueRepository(db), func() { _ = db.Close() }, nil
	case config.DriverPostgres:
		repo, err := database.NewPostgresLeagueRepository(ctx, cfg.Database.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}
	return nil, nil, fmt.Errorf("backups need a mongo or postgres store, STORE_DRIVER is %q", cfg.Database.Driver)
}

func listBackups(backupService *services.BackupService) {
	backups, err := backupService.ListBackups()
	if err != nil {
		logging.Fatalf("Failed to list backups: %v", err)
	}
	if len(backups) == 0 {
		fmt.Println("No backups found")
		return
	}
	for _, b := range backups {
		fmt.Printf("%s  %s  %8.1f KB  %s\n",
			b.Timestamp, b.CreatedAt.Format(time.RFC3339), float64(b.Size)/1024, strings.Join(b.Leagues, ","))
	}
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
