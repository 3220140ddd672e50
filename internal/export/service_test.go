package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/entity"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/fields"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/repository"
)

func str(s string) *string { return &s }

func readRows(t *testing.T, b []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestRecordsXLSX(t *testing.T) {
	rec := fields.EmptyRecord()
	rec.Name = str("Jane Doe")
	rec.Email = str("jane@example.com")
	rec.Skills = []string{"python", "sql"}
	rec.Education = []string{"B.Tech, ABC", "HSC 2015"}
	rec.Address.City = str("Pune")

	svc := NewService(nil, nil)
	b, err := svc.RecordsXLSX([]Row{
		{File: "jane.pdf", Status: "DONE", Method: "pdf-text", Record: rec},
		{File: "notes.txt", Err: "Invalid file", Record: fields.EmptyRecord()},
	})
	require.NoError(t, err)

	rows := readRows(t, b)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, "jane.pdf", rows[1][0])
	assert.Equal(t, "Jane Doe", rows[1][2])
	assert.Equal(t, "jane@example.com", rows[1][4])
	assert.Equal(t, "python, sql", rows[1][5])
	assert.Equal(t, "B.Tech, ABC | HSC 2015", rows[1][6])
	assert.Equal(t, "Pune", rows[1][7])
	assert.Equal(t, "ERROR: Invalid file", rows[2][1])
}

func TestJobsXLSX(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: repository.MemoryDSN}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	jobs := repository.NewExtractionJobRepository(db, nil)

	job := &entity.ExtractionJob{Filename: "jane.pdf", ContentHash: "h", Format: "PDF"}
	require.NoError(t, jobs.Start(ctx, job))
	rec := fields.EmptyRecord()
	rec.Name = str("Jane Doe")
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, jobs.Finish(ctx, job.ID, entity.JobResult{Method: "pdf-text", Record: raw}))

	b, err := NewService(jobs, nil).JobsXLSX(ctx, 10)
	require.NoError(t, err)
	rows := readRows(t, b)
	require.Len(t, rows, 2)
	assert.Equal(t, "DONE", rows[1][1])
	assert.Equal(t, "Jane Doe", rows[1][2])
	assert.Equal(t, "pdf-text", rows[1][10])
	assert.Equal(t, job.ID.String(), rows[1][11])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}
