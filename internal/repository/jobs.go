package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/entity"
)

type ExtractionJobRepository interface {
	Start(ctx context.Context, job *entity.ExtractionJob) error
	Finish(ctx context.Context, id uuid.UUID, res entity.JobResult) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	FindDoneByHash(ctx context.Context, contentHash string) (*entity.ExtractionJob, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.ExtractionJob, error)
	List(ctx context.Context, limit int) ([]entity.ExtractionJob, error)
}

type extractionJobRepo struct {
	db  *DB
	q   jobQueries
	log *slog.Logger
}

func NewExtractionJobRepository(db *DB, log *slog.Logger) ExtractionJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractionJobRepo{db: db, q: jobQueries{db: db}, log: log}
}

var jobColumns = []string{
	"id", "filename", "content_hash", "format", "status", "method", "pages", "text_len",
	"preprocessed", "record_json", "error_message", "archive_uri", "created_at", "finished_at",
}

// jobQueries builds the extraction_jobs statements for one dialect.
type jobQueries struct {
	db *DB
}

func (q jobQueries) insert(job *entity.ExtractionJob) (string, []any) {
	return q.db.builder().Insert(jobsTable).
		Columns("id", "filename", "content_hash", "format", "status", "archive_uri", "created_at").
		Values(job.ID.String(), job.Filename, job.ContentHash, job.Format, job.Status,
			nullString(job.ArchiveURI), q.db.timeArg(job.CreatedAt)).
		Query()
}

func (q jobQueries) finishDone(id uuid.UUID, res entity.JobResult, at time.Time) (string, []any) {
	var record any
	if len(res.Record) > 0 {
		record = string(res.Record)
	}
	return q.db.builder().Update(jobsTable).
		Set("status", string(constants.JobStatusDone)).
		Set("method", res.Method).
		Set("pages", res.Pages).
		Set("text_len", res.TextLen).
		Set("preprocessed", res.Preprocessed).
		Set("record_json", record).
		Set("finished_at", q.db.timeArg(at)).
		Where(entsql.EQ("id", id.String())).
		Query()
}

func (q jobQueries) finishFailed(id uuid.UUID, message string, at time.Time) (string, []any) {
	return q.db.builder().Update(jobsTable).
		Set("status", string(constants.JobStatusFailed)).
		Set("error_message", message).
		Set("finished_at", q.db.timeArg(at)).
		Where(entsql.EQ("id", id.String())).
		Query()
}

func (q jobQueries) selectJobs() *entsql.Selector {
	b := q.db.builder()
	return b.Select(jobColumns...).From(b.Table(jobsTable))
}

func (q jobQueries) byID(id uuid.UUID) (string, []any) {
	return q.selectJobs().Where(entsql.EQ("id", id.String())).Query()
}

func (q jobQueries) doneByHash(contentHash string) (string, []any) {
	return q.selectJobs().
		Where(entsql.And(
			entsql.EQ("content_hash", contentHash),
			entsql.EQ("status", string(constants.JobStatusDone)),
		)).
		OrderBy(entsql.Desc("finished_at")).
		Limit(1).
		Query()
}

func (q jobQueries) newest(limit int) (string, []any) {
	return q.selectJobs().OrderBy(entsql.Desc("created_at")).Limit(limit).Query()
}

func (r *extractionJobRepo) Start(ctx context.Context, job *entity.ExtractionJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = string(constants.JobStatusReceived)
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	query, args := r.q.insert(job)
	if err := r.db.Driver.Exec(ctx, query, args, nil); err != nil {
		r.log.Error("extraction_job start failed", "filename", job.Filename, "err", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.log.Info("extraction_job started", "job_id", job.ID, "format", job.Format)
	return nil
}

func (r *extractionJobRepo) Finish(ctx context.Context, id uuid.UUID, res entity.JobResult) error {
	query, args := r.q.finishDone(id, res, time.Now())
	if err := r.update(ctx, id, query, args); err != nil {
		r.log.Error("extraction_job finish(DONE) failed", "job_id", id, "err", err)
		return err
	}
	r.log.Info("extraction_job finished (DONE)", "job_id", id, "method", res.Method)
	return nil
}

func (r *extractionJobRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	query, args := r.q.finishFailed(id, message, time.Now())
	if err := r.update(ctx, id, query, args); err != nil {
		r.log.Error("extraction_job finish(FAILED) failed", "job_id", id, "err", err)
		return err
	}
	r.log.Warn("extraction_job finished (FAILED)", "job_id", id, "error", message)
	return nil
}

func (r *extractionJobRepo) update(ctx context.Context, id uuid.UUID, query string, args []any) error {
	var res sql.Result
	if err := r.db.Driver.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: extraction job %s", common.ErrNotFound, id)
	}
	return nil
}

func (r *extractionJobRepo) FindDoneByHash(ctx context.Context, contentHash string) (*entity.ExtractionJob, error) {
	query, args := r.q.doneByHash(contentHash)
	job, err := r.one(ctx, query, args)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			r.log.Error("failed to find job by hash", "content_hash", contentHash, "error", err)
		}
		return nil, err
	}
	return job, nil
}

func (r *extractionJobRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ExtractionJob, error) {
	query, args := r.q.byID(id)
	return r.one(ctx, query, args)
}

func (r *extractionJobRepo) List(ctx context.Context, limit int) ([]entity.ExtractionJob, error) {
	if limit <= 0 {
		limit = 100
	}
	query, args := r.q.newest(limit)
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []entity.ExtractionJob
	for rows.Next() {
		job, err := scanJob(&rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *extractionJobRepo) one(ctx context.Context, query string, args []any) (*entity.ExtractionJob, error) {
	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		return nil, fmt.Errorf("%w: extraction job", common.ErrNotFound)
	}
	return scanJob(&rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*entity.ExtractionJob, error) {
	var (
		job                           entity.ExtractionJob
		id                            string
		method, record, errMsg, arURI sql.NullString
		createdAt, finishedAt         dbTime
	)
	err := row.Scan(&id, &job.Filename, &job.ContentHash, &job.Format, &job.Status, &method,
		&job.Pages, &job.TextLen, &job.Preprocessed, &record, &errMsg, &arURI, &createdAt, &finishedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}

	if job.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: bad job id %q", common.ErrDatabase, id)
	}
	job.Method = stringPtr(method)
	job.ErrorMessage = stringPtr(errMsg)
	job.ArchiveURI = stringPtr(arURI)
	if record.Valid {
		job.RecordJSON = []byte(record.String)
	}
	if createdAt.Valid {
		job.CreatedAt = createdAt.Time
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		job.FinishedAt = &t
	}
	return &job, nil
}

// dbTime scans timestamps from pgx (time.Time) and sqlite (text or time.Time).
type dbTime struct {
	Time  time.Time
	Valid bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
}

func (t *dbTime) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		t.Valid = false
		return nil
	case time.Time:
		t.Time, t.Valid = v, true
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed, true
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
