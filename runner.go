package dbbackup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner wires the filename template, dump command, storage backend and
// optional notifier into the backup cycle: dump today's backup, upload it,
// scan for existing backups and prune everything beyond the retention
// limit.
type Runner struct {
	cfg      *Config
	tmpl     *FilenameTemplate
	store    Storage
	dumper   Dumper
	notifier Notifier

	// now is swappable for tests.
	now func() time.Time
}

// NewRunner creates a runner. notifier may be nil, in which case dump
// failures are only logged.
func NewRunner(cfg *Config, tmpl *FilenameTemplate, store Storage, dumper Dumper, notifier Notifier) *Runner {
	return &Runner{
		cfg:      cfg,
		tmpl:     tmpl,
		store:    store,
		dumper:   dumper,
		notifier: notifier,
		now:      time.Now,
	}
}

// RunOnce performs one full backup cycle. A dump failure triggers the
// notifier (when configured) and aborts the cycle before any pruning; a
// failure to delete an individual stale backup never does.
func (r *Runner) RunOnce(ctx context.Context) error {
	backupName := r.tmpl.Render(r.now())
	log.Printf("Creating backup: %s", backupName)

	tmpDir, err := os.MkdirTemp("", "dbbackup")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if errRemove := os.RemoveAll(tmpDir); errRemove != nil {
			log.Printf("Warning: failed to remove temp directory: %v", errRemove)
		}
	}()

	dumpPath := filepath.Join(tmpDir, backupName)
	if err = r.dumper.Dump(ctx, dumpPath); err != nil {
		log.Printf("Backup failed: %v", err)
		if r.notifier != nil {
			if nErr := r.notifier.NotifyFailure(ctx, err); nErr != nil {
				log.Printf("Warning: failure notification not sent: %v", nErr)
			}
		}
		return err
	}

	if err = r.store.Upload(ctx, dumpPath, backupName); err != nil {
		return fmt.Errorf("failed to store backup: %w", err)
	}
	log.Printf("Backup stored: %s (%s)", backupName, r.store.Type())

	backups, err := FindBackups(ctx, r.store, r.tmpl)
	if err != nil {
		return err
	}

	report := Prune(ctx, r.store, backups, r.cfg.RetentionCount)
	if failed := report.Failed(); failed > 0 {
		log.Printf("Warning: %d stale backup(s) could not be deleted", failed)
	}

	return nil
}

// Run executes the backup cycle. Without a cron schedule it runs once and
// returns. With a schedule it registers the cycle with a cron scheduler,
// bounds each run by the configured timeout, and blocks until SIGINT or
// SIGTERM.
func (r *Runner) Run(ctx context.Context) error {
	log.Printf("Configuration loaded:")
	log.Printf("  Filename template: %s", r.tmpl)
	log.Printf("  Storage type: %s", r.store.Type())
	log.Printf("  Retention count: %d", r.cfg.RetentionCount)

	if r.cfg.BackupCron == "" {
		return r.RunOnce(ctx)
	}
	log.Printf("  Backup schedule: %s", r.cfg.BackupCron)

	// Run backup on start if configured
	if r.cfg.BackupOnStart {
		log.Println("Running initial backup on startup...")
		if err := r.RunOnce(ctx); err != nil {
			log.Printf("Initial backup failed: %v", err)
		}
	}

	// Setup cron scheduler (standard 5-field format: minute hour dom month dow)
	c := cron.New()

	entryID, err := c.AddFunc(r.cfg.BackupCron, func() {
		log.Println("Cron triggered backup job")
		runCtx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.BackupTimeout)*time.Minute)
		defer cancel()

		if runErr := r.RunOnce(runCtx); runErr != nil {
			log.Printf("Backup failed: %v", runErr)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	log.Printf("Cron job registered with ID: %d", entryID)

	c.Start()
	log.Println("Cron scheduler started, waiting for scheduled jobs...")

	// Print next scheduled run time
	entries := c.Entries()
	if len(entries) > 0 {
		log.Printf("Next backup scheduled at: %s", entries[0].Next.Format("2006-01-02 15:04:05"))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %s, shutting down...", sig)
	case <-ctx.Done():
		log.Println("Context cancelled, shutting down...")
	}

	// Stop cron scheduler and wait for a running job to finish
	stopCtx := c.Stop()
	<-stopCtx.Done()

	log.Println("Shutdown complete")
	return nil
}
