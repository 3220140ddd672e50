package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/fields"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/repository"
)

// SheetName is the worksheet holding one row per resume.
const SheetName = "Resumes"

// Row is one exported resume.
type Row struct {
	File   string
	JobID  string
	Method string
	Status string
	Record fields.ResumeRecord
	Err    string
}

var headers = []string{
	"File",
	"Status",
	"Name",
	"Contact Number",
	"Email",
	"Skills",
	"Education",
	"City",
	"Pincode",
	"Address",
	"Method",
	"Job ID",
}

// Service produces XLSX bytes for extracted records.
type Service struct {
	jobs   repository.ExtractionJobRepository
	logger *slog.Logger
}

func NewService(jobs repository.ExtractionJobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// RecordsXLSX returns a workbook with a header row and one row per entry, in order.
func (s *Service) RecordsXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_failed", "error", err)
		}
	}()
	if _, err := f.NewSheet(SheetName); err != nil {
		return nil, err
	}
	idx, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i, r := range rows {
		rowNum := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		status := r.Status
		if r.Err != "" {
			status = "ERROR: " + truncate(r.Err, 140)
		}
		write(1, r.File)
		write(2, status)
		write(3, deref(r.Record.Name))
		write(4, deref(r.Record.ContactNumber))
		write(5, deref(r.Record.Email))
		write(6, strings.Join(r.Record.Skills, ", "))
		write(7, strings.Join(r.Record.Education, " | "))
		write(8, deref(r.Record.Address.City))
		write(9, deref(r.Record.Address.Pincode))
		write(10, deref(r.Record.Address.Address))
		write(11, r.Method)
		write(12, r.JobID)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 32) // file
	_ = f.SetColWidth(SheetName, "B", "B", 14) // status
	_ = f.SetColWidth(SheetName, "C", "E", 24) // name, phone, email
	_ = f.SetColWidth(SheetName, "F", "G", 48) // skills, education
	_ = f.SetColWidth(SheetName, "H", "I", 14) // city, pincode
	_ = f.SetColWidth(SheetName, "J", "J", 48) // address
	_ = f.SetColWidth(SheetName, "K", "L", 38)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// JobsXLSX exports the most recent stored jobs.
func (s *Service) JobsXLSX(ctx context.Context, limit int) ([]byte, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("export: no job repository configured")
	}
	jobs, err := s.jobs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	rows := make([]Row, 0, len(jobs))
	for _, j := range jobs {
		row := Row{
			File:   filepath.Base(j.Filename),
			JobID:  j.ID.String(),
			Status: j.Status,
			Record: fields.EmptyRecord(),
		}
		if j.Method != nil {
			row.Method = *j.Method
		}
		if j.ErrorMessage != nil {
			row.Err = *j.ErrorMessage
		}
		if len(j.RecordJSON) > 0 {
			if err := json.Unmarshal(j.RecordJSON, &row.Record); err != nil {
				row.Err = "undecodable record"
			}
		}
		rows = append(rows, row)
	}
	return s.RecordsXLSX(rows)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
