package db

import (
	"fmt"

	"travelglobe/internal/auth"
	"travelglobe/internal/entry"
	"travelglobe/internal/jobs"
	"travelglobe/internal/mood"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&auth.User{},
		&entry.Location{},
		&entry.Entry{},
		&entry.Photo{},
		&mood.Mood{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// List queries sort by created_time or date_start within a user.
	stmts := []string{
		`create index if not exists idx_entries_user_created_time on entries(user_id, created_time desc);`,
		`create index if not exists idx_entries_user_date_start on entries(user_id, date_start desc);`,
		`create index if not exists idx_entries_user_entry_type on entries(user_id, entry_type);`,
		`create index if not exists idx_photos_entry_id on photos(entry_id);`,
		`create index if not exists idx_moods_user_created on moods(user_id, created_at desc);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	// Distinct visited places group by the denormalized name.
	if err := gdb.Exec(`
create index if not exists idx_entries_visited_location
on entries(user_id, location_name)
where entry_type = 'visited';
`).Error; err != nil {
		return err
	}

	return nil
}
