package dbbackup

import (
	"context"
	"log"
)

// DeleteResult records the outcome of deleting one stale backup.
type DeleteResult struct {
	Record BackupRecord
	Err    error
}

// PruneReport summarizes a retention pass. Every discarded record appears in
// Discarded with its individual outcome, so a partially failed pass is still
// fully accounted for.
type PruneReport struct {
	Kept      int
	Discarded []DeleteResult
}

// Failed returns how many deletions in the report failed.
func (r PruneReport) Failed() int {
	n := 0
	for _, d := range r.Discarded {
		if d.Err != nil {
			n++
		}
	}
	return n
}

// Prune applies the retention policy: it keeps the retain most-recent
// records and deletes the rest from storage. Each deletion is best-effort;
// a failure is recorded in the report and never aborts the remaining
// deletions.
func Prune(ctx context.Context, s Storage, records []BackupRecord, retain int) PruneReport {
	log.Printf("Applying retention policy (keeping %d backups)...", retain)

	discard := SelectDiscards(records, retain)
	report := PruneReport{Kept: len(records) - len(discard)}

	if len(discard) == 0 {
		log.Printf("Current backup count (%d) within retention limit", len(records))
		return report
	}

	for _, rec := range discard {
		log.Printf("Deleting old backup: %s", rec.Location)
		err := s.Delete(ctx, rec.Location)
		if err != nil {
			log.Printf("Warning: failed to delete %s: %v", rec.Location, err)
		}
		report.Discarded = append(report.Discarded, DeleteResult{Record: rec, Err: err})
	}

	log.Printf("Retention policy applied, deleted %d old backup(s)", len(discard)-report.Failed())
	return report
}
