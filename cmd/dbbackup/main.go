package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mwirth/dbbackup"
)

var (
	flagRetain   int
	flagFile     string
	flagDir      string
	flagNotify   string
	flagUsername string
	flagPassword string
	flagCommand  string
	flagStorage  string
	flagSchedule string
	flagEnvFile  string
)

var rootCmd = &cobra.Command{
	Use:   "dbbackup",
	Short: "Back up a database and prune old backups",
	Long: `dbbackup creates a dated database backup by running an external dump
command, stores it in a local directory or object storage, and deletes
backups beyond the retention limit. The newest backups are retained.

The filename template must contain a Go date layout between "[[" and "]]",
e.g. "faturama.[[20060102]].bak.sql"; the layout is replaced by the date
the backup is created and is used to recognize existing backups.`,
	Args:    cobra.NoArgs,
	PreRunE: validateFlags,
	RunE:    run,
}

func init() {
	rootCmd.Flags().IntVarP(&flagRetain, "retain", "r", 7, "number of backups to retain; the newest backups are kept")
	rootCmd.Flags().StringVarP(&flagFile, "file", "f", dbbackup.DefaultFileTemplate, "filename template with a [[date layout]] token")
	rootCmd.Flags().StringVar(&flagDir, "dir", ".", "directory in which to store backups (local storage)")
	rootCmd.Flags().StringVarP(&flagNotify, "notify", "n", "", "email address to send notifications on error")
	rootCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "email SMTP username")
	rootCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "email SMTP password")
	rootCmd.Flags().StringVarP(&flagCommand, "command", "c", "", "external dump command, {path} is replaced with the output file")
	rootCmd.Flags().StringVar(&flagStorage, "storage", "", "storage backend: local, s3 or gcs (default local)")
	rootCmd.Flags().StringVar(&flagSchedule, "schedule", "", "cron expression for periodic backups (default: run once)")
	rootCmd.Flags().StringVar(&flagEnvFile, "env-file", "", "dotenv file to load before reading the environment")
}

// validateFlags rejects bad invocations before any backup action runs.
func validateFlags(cmd *cobra.Command, args []string) error {
	if flagRetain <= 0 {
		return fmt.Errorf("--retain must be greater than 0, got %d", flagRetain)
	}
	if flagNotify != "" && (flagUsername == "" || flagPassword == "") {
		return fmt.Errorf("--notify requires --username and --password")
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	// Flags are validated; anything failing past this point is a runtime
	// error, not a usage error.
	cmd.SilenceUsage = true

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting database backup...")

	cfg, err := dbbackup.LoadConfig(flagEnvFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	if err = cfg.Validate(); err != nil {
		return err
	}

	tmpl, err := dbbackup.ParseTemplate(cfg.FileTemplate)
	if err != nil {
		return err
	}

	store, err := dbbackup.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Printf("Storage initialized: %s", store.Type())

	dumper, err := dbbackup.NewCommandDumper(cfg.BackupCommand, cfg.BackupEnv)
	if err != nil {
		return err
	}

	var notifier dbbackup.Notifier
	if cfg.NotifyAddress != "" {
		creds := dbbackup.EmailCredentials{
			Address:  cfg.NotifyAddress,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		}
		notifier = dbbackup.NewSMTPNotifier(creds, cfg.SMTPHost, cfg.SMTPPort)
	}

	runner := dbbackup.NewRunner(cfg, tmpl, store, dumper, notifier)
	return runner.Run(cmd.Context())
}

// applyFlags overrides configuration fields with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *dbbackup.Config) {
	if cmd.Flags().Changed("retain") {
		cfg.RetentionCount = flagRetain
	}
	if cmd.Flags().Changed("file") {
		cfg.FileTemplate = flagFile
	}
	if cmd.Flags().Changed("dir") {
		cfg.BackupDir = flagDir
	}
	if cmd.Flags().Changed("command") {
		cfg.BackupCommand = flagCommand
	}
	if cmd.Flags().Changed("storage") {
		cfg.StorageType = flagStorage
	}
	if cmd.Flags().Changed("schedule") {
		cfg.BackupCron = flagSchedule
	}
	if cmd.Flags().Changed("notify") {
		cfg.NotifyAddress = flagNotify
	}
	if cmd.Flags().Changed("username") {
		cfg.SMTPUsername = flagUsername
	}
	if cmd.Flags().Changed("password") {
		cfg.SMTPPassword = flagPassword
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
