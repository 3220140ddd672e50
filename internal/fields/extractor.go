// Package fields extracts resume attributes from plain text with patterns,
// a controlled vocabulary and part-of-speech runs.
package fields

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/nlp"
)

// Field names, in the order they are extracted and reported.
const (
	FieldName           = "name"
	FieldContactNumber  = "contact_number"
	FieldEmail          = "email"
	FieldSkills         = "skills"
	FieldEducation      = "education"
	FieldWorkExperience = "work_experience"
	FieldAddress        = "address"
)

// Order is the fixed extraction order.
var Order = []string{
	FieldName, FieldContactNumber, FieldEmail, FieldSkills,
	FieldEducation, FieldWorkExperience, FieldAddress,
}

type Config struct {
	Concurrent bool // run extractors in parallel; output is identical either way
}

// Extractor runs every field extractor over the same text. Each one is isolated:
// a panic leaves that field at its not-found value and the rest still run.
type Extractor struct {
	cfg    Config
	tagger nlp.Tagger
	logger *slog.Logger
}

func NewExtractor(cfg Config, tagger nlp.Tagger, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, tagger: tagger, logger: logger}
}

// Extract builds a ResumeRecord from text.
func (e *Extractor) Extract(ctx context.Context, text string) ResumeRecord {
	start := time.Now()
	rec := EmptyRecord()

	// each step writes only its own field of rec
	steps := map[string]func(){
		FieldName:           func() { rec.Name = Name(e.tagger, text) },
		FieldContactNumber:  func() { rec.ContactNumber = ContactNumber(text) },
		FieldEmail:          func() { rec.Email = Email(text) },
		FieldSkills:         func() { rec.Skills = Skills(text) },
		FieldEducation:      func() { rec.Education = Education(text) },
		FieldWorkExperience: func() { rec.WorkExperience = WorkExperience(text) },
		FieldAddress:        func() { rec.Address = Address(text) },
	}

	failed := make([]bool, len(Order))
	if e.cfg.Concurrent {
		g, _ := errgroup.WithContext(ctx)
		for i, name := range Order {
			g.Go(func() error {
				failed[i] = !e.safe(name, steps[name])
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, name := range Order {
			failed[i] = !e.safe(name, steps[name])
		}
	}

	// reset failed fields so a partial write from a panicking step is not kept
	empty := EmptyRecord()
	for i, name := range Order {
		if failed[i] {
			resetField(&rec, &empty, name)
		}
	}

	e.logger.Debug("fields.extract.ok",
		"found", rec.FoundCount(),
		"skills", len(rec.Skills),
		"education_lines", len(rec.Education),
		"concurrent", e.cfg.Concurrent,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec
}

func (e *Extractor) safe(name string, fn func()) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("fields.extractor.panic", "field", name, "panic", fmt.Sprint(rec))
			ok = false
		}
	}()
	fn()
	return true
}

func resetField(rec, empty *ResumeRecord, name string) {
	switch name {
	case FieldName:
		rec.Name = nil
	case FieldContactNumber:
		rec.ContactNumber = nil
	case FieldEmail:
		rec.Email = nil
	case FieldSkills:
		rec.Skills = empty.Skills
	case FieldEducation:
		rec.Education = empty.Education
	case FieldWorkExperience:
		rec.WorkExperience = empty.WorkExperience
	case FieldAddress:
		rec.Address = AddressRecord{}
	}
}
