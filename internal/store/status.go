package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusStore is the Postgres-backed pipeline status table: at most one row
// per bamboo id, upserted with last-writer-wins semantics.
type StatusStore struct {
	db *pgxpool.Pool
}

func NewStatusStore(db *pgxpool.Pool) *StatusStore {
	return &StatusStore{db: db}
}

// Set records the latest stage and outcome for an application, refreshing
// updated_at on every write.
func (s *StatusStore) Set(ctx context.Context, bambooID int, step, status string) error {
	_, err := s.db.Exec(ctx, `
		insert into pipeline_status (bamboo_id, step, status)
		values ($1, $2, $3)
		on conflict (bamboo_id)
		do update set step = $2, status = $3, updated_at = now()`,
		bambooID, step, status)
	if err != nil {
		return fmt.Errorf("set status for %d: %w", bambooID, err)
	}

	return nil
}

// Ensure inserts the initial SYNC/COMPLETED row when none exists, leaving an
// existing row untouched. This is the backfill guarantee for applications
// that predate the controller.
func (s *StatusStore) Ensure(ctx context.Context, bambooID int) error {
	_, err := s.db.Exec(ctx, `
		insert into pipeline_status (bamboo_id, step, status)
		values ($1, 'SYNC', 'COMPLETED')
		on conflict (bamboo_id) do nothing`,
		bambooID)
	if err != nil {
		return fmt.Errorf("ensure status for %d: %w", bambooID, err)
	}

	return nil
}

// Get returns the status row for an application, or nil when absent.
func (s *StatusStore) Get(ctx context.Context, bambooID int) (*PipelineStatus, error) {
	var row PipelineStatus
	err := s.db.QueryRow(ctx, `
		select bamboo_id, step, status, updated_at, created_at
		from pipeline_status where bamboo_id = $1`,
		bambooID).Scan(&row.BambooID, &row.Step, &row.Status, &row.UpdatedAt, &row.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get status for %d: %w", bambooID, err)
	}

	return &row, nil
}

// ListFailures returns rows whose outcome is terminal and failed: ERROR or
// any FAILED_* status. These are the candidates for operator re-enqueue.
func (s *StatusStore) ListFailures(ctx context.Context) ([]*PipelineStatus, error) {
	rows, err := s.db.Query(ctx, `
		select bamboo_id, step, status, updated_at, created_at
		from pipeline_status
		where status = 'ERROR' or status like 'FAILED\_%'
		order by updated_at desc`)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()

	var out []*PipelineStatus
	for rows.Next() {
		var row PipelineStatus
		if err := rows.Scan(&row.BambooID, &row.Step, &row.Status, &row.UpdatedAt, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status row: %w", err)
		}
		out = append(out, &row)
	}

	return out, rows.Err()
}

// Migrate creates the pipeline_status table and its updated_at trigger.
// Safe to run repeatedly.
func (s *StatusStore) Migrate(ctx context.Context) error {
	statements := []string{
		`create table if not exists pipeline_status (
			id serial primary key,
			bamboo_id integer unique not null,
			step varchar(50) not null,
			status varchar(50) not null,
			updated_at timestamp default current_timestamp,
			created_at timestamp default current_timestamp
		)`,
		`create or replace function update_updated_at_column()
		returns trigger as $$
		begin
			new.updated_at = now();
			return new;
		end;
		$$ language 'plpgsql'`,
		`drop trigger if exists update_pipeline_status_modtime on pipeline_status`,
		`create trigger update_pipeline_status_modtime
		before update on pipeline_status
		for each row
		execute procedure update_updated_at_column()`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate pipeline_status: %w", err)
		}
	}

	return nil
}
