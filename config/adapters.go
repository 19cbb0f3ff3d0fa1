package config

import (
	"io"
	"os"

	"prediction-league/database"
	"prediction-league/logging"
	"prediction-league/services"
)

// ToDatabaseConfig converts Config to database.Config
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		URI:      c.Database.URI,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Username: c.Database.Username,
		Password: c.Database.Password,
		Database: c.Database.Database,
		Timeout:  c.Database.Timeout,
	}
}

// ToLoggingConfig converts Config to logging.Config. file may be nil.
func (c *Config) ToLoggingConfig(file io.Writer) logging.Config {
	return logging.Config{
		Level:       c.Logging.Level,
		Output:      os.Stdout,
		File:        file,
		Prefix:      c.Logging.Prefix,
		EnableColor: c.Logging.EnableColor,
	}
}

// ToLeagueOptions converts Config to services.LeagueOptions, loading the seed
// file when one is configured
func (c *Config) ToLeagueOptions() (services.LeagueOptions, error) {
	opts := services.LeagueOptions{
		LeagueID:           c.League.ID,
		LockSubmittedWeeks: c.League.LockSubmittedWeeks,
	}
	if c.League.SeedFile != "" {
		seed, err := services.LoadLeagueSeed(c.League.SeedFile)
		if err != nil {
			return opts, err
		}
		opts.Seed = seed
	}
	return opts, nil
}

// ShouldLogToFile returns whether file logging is enabled
func (c *Config) ShouldLogToFile() bool {
	return c.Logging.EnableFile
}

// GetLogDir returns the log directory path
func (c *Config) GetLogDir() string {
	return c.Logging.LogDir
}

// ToBackupOptions converts Config to services.BackupOptions for the configured league
func (c *Config) ToBackupOptions() services.BackupOptions {
	return services.BackupOptions{
		BackupDir: c.Backup.BackupDir,
		LeagueIDs: []string{c.League.ID},
	}
}

// IsBackupEnabled returns whether scheduled backups are enabled
func (c *Config) IsBackupEnabled() bool {
	return c.Backup.Enabled
}
