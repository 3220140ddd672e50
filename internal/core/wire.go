package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/extract"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/fields"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/llm"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/llm/gemini"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/llm/openai"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/nlp"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/notify"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/ocr"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/preprocess"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/repository"
	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/storage"
)

// Components are the long-lived collaborators a command builds from Config.
type Components struct {
	Processor   *Processor
	Reformatter llm.Reformatter // nil when LLM_PROVIDER is unset
	Jobs        repository.ExtractionJobRepository
	Publisher   notify.Publisher
}

// Close releases the publisher connection.
func (c *Components) Close() error {
	if c == nil || c.Publisher == nil {
		return nil
	}
	return c.Publisher.Close()
}

// NewTextExtractor wires the PDF, DOCX and image extractors over the configured CLI tools.
func NewTextExtractor(cfg common.OCRConfig, logger *slog.Logger) *extract.Extractor {
	return extract.NewExtractor(extract.Config{
		Tesseract: ocr.TesseractConfig{
			Binary:      cfg.Tesseract,
			Lang:        cfg.TesseractLang,
			TessdataDir: cfg.TessdataDir,
			PSM:         cfg.PSM,
			OEM:         cfg.OEM,
		},
		Pdfimages:  cfg.Pdfimages,
		OCRTimeout: cfg.Timeout,
		WorkDir:    cfg.WorkDir,
	}, ocr.NewExecRunner(logger), logger)
}

// NewFieldExtractor wires the field extractors with the prose POS tagger.
func NewFieldExtractor(cfg common.FieldsConfig, logger *slog.Logger) *fields.Extractor {
	return fields.NewExtractor(fields.Config{Concurrent: cfg.Concurrent}, nlp.NewProseTagger(logger), logger)
}

// NewReformatter returns per-request conversations over the configured provider, or nil when none is set.
func NewReformatter(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Reformatter, error) {
	var model llm.ChatModel
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		model = openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	case "gemini":
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		model = c
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	return llm.NewSessions(model, logger), nil
}

// NewPublisher dials AMQP when AMQP_URL is set and falls back to NopPublisher otherwise.
func NewPublisher(cfg common.NotifyConfig, logger *slog.Logger) (notify.Publisher, error) {
	if cfg.AMQPURL == "" {
		return notify.NopPublisher{}, nil
	}
	p, err := notify.DialAMQP(cfg.AMQPURL, cfg.Exchange, cfg.RoutingKey, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Build assembles the processor and its optional collaborators. db may be nil.
func Build(ctx context.Context, cfg *common.Config, db *repository.DB, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Components{}

	opts := []Option{WithWorkDir(cfg.OCR.WorkDir)}
	if cfg.Preprocess.Enabled {
		opts = append(opts, WithPreprocessor(preprocess.NewMasker(preprocess.Config{
			Ghostscript: cfg.Preprocess.Ghostscript,
			BandHeight:  cfg.Preprocess.BandHeight,
		}, ocr.NewExecRunner(logger), logger)))
	}
	if db != nil {
		c.Jobs = repository.NewExtractionJobRepository(db, logger)
		opts = append(opts, WithJobRepository(c.Jobs), WithReuseByHash(cfg.ReuseByHash))
	}

	archive, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if archive != nil {
		opts = append(opts, WithArchive(archive))
	}

	c.Publisher, err = NewPublisher(cfg.Notify, logger)
	if err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	opts = append(opts, WithPublisher(c.Publisher))

	c.Reformatter, err = NewReformatter(ctx, cfg.LLM, logger)
	if err != nil {
		_ = c.Publisher.Close()
		return nil, fmt.Errorf("llm: %w", err)
	}

	c.Processor = NewProcessor(logger,
		NewTextExtractor(cfg.OCR, logger),
		NewFieldExtractor(cfg.Fields, logger),
		opts...,
	)
	logger.Info("processor.wired",
		"preprocess", cfg.Preprocess.Enabled,
		"job_store", db != nil,
		"archive", cfg.Storage.Backend,
		"amqp", cfg.Notify.AMQPURL != "",
		"llm", cfg.LLM.Provider,
	)
	return c, nil
}
