package dbbackup

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// BackupRecord is one recognized backup: the date embedded in its name and
// its location within the storage backend (the backup name for local and
// object storage alike). Records are built fresh on every run and only live
// for the duration of a retention decision.
type BackupRecord struct {
	Date     time.Time
	Location string
}

// FindBackups lists the storage backend and returns a record for every
// entry whose name matches the template. Entries that do not match are
// skipped silently.
func FindBackups(ctx context.Context, s Storage, tmpl *FilenameTemplate) ([]BackupRecord, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	var backups []BackupRecord
	for _, name := range names {
		date, ok := tmpl.Match(name)
		if !ok {
			continue
		}
		backups = append(backups, BackupRecord{Date: date, Location: name})
	}

	return backups, nil
}

// SelectDiscards returns the records that fall outside the retention limit:
// the retain most-recent records are kept, everything older is returned for
// deletion. Records with equal dates keep their input order. The input slice
// is not modified; the function is pure and callers may invoke it repeatedly
// with identical results.
//
// retain is not range-checked here: 0 discards everything, a value at or
// above len(records) discards nothing. Callers enforce positivity.
func SelectDiscards(records []BackupRecord, retain int) []BackupRecord {
	if retain < 0 {
		retain = 0
	}
	if retain >= len(records) {
		return nil
	}

	sorted := make([]BackupRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	return sorted[retain:]
}
