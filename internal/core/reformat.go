package core

import (
	"context"
	"strings"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/extract"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/llm"
)

// ReformatOutcome pairs the extraction outcome with the reformatter's reply.
type ReformatOutcome struct {
	Outcome   Outcome
	Formatted llm.Formatted
}

// ProcessAndReformat runs Process and hands the normalized text to r with the resume template.
// Empty text skips the reformatter. A reformatter failure is returned as an error
// after the outcome is complete.
func (p *Processor) ProcessAndReformat(ctx context.Context, up Upload, r llm.Reformatter) (ReformatOutcome, error) {
	if r == nil {
		return ReformatOutcome{}, common.ErrReformatterMissing
	}
	out, err := p.Process(ctx, up)
	res := ReformatOutcome{Outcome: out}
	if err != nil {
		return res, err
	}

	text := extract.Normalize(out.Extraction.Text)
	if strings.TrimSpace(text) == "" {
		res.Formatted = llm.Formatted{Problems: []string{"no text extracted"}}
		p.logger.Warn("processor.reformat.skipped", "job_id", out.JobID, "reason", "empty text")
		return res, nil
	}

	raw, err := r.Reformat(ctx, text, llm.ResumeTemplate)
	if err != nil {
		p.logger.Error("processor.reformat.failed", "job_id", out.JobID, "error", err)
		return res, common.NewAppError(common.CodeUnavailable, "reformatter failed", err)
	}
	res.Formatted = llm.Interpret(raw)
	p.logger.Info("processor.reformat.ok",
		"job_id", out.JobID,
		"valid", res.Formatted.Valid,
		"fixes", len(res.Formatted.Fixes),
	)
	return res, nil
}
