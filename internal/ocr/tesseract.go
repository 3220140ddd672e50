package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
)

// TesseractConfig configures the tesseract CLI.
type TesseractConfig struct {
	Binary      string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	PSM         int // page segmentation mode; 0 keeps tesseract's default
	OEM         int // 1 = LSTM; leave 0 to use default
}

// Tesseract recognizes text in raster images by shelling out to tesseract.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg TesseractConfig, runner Runner, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = constants.DefaultTesseractLang
	}
	return &Tesseract{cfg: cfg, runner: runner, logger: logger}
}

// Lang is the configured recognition language.
func (t *Tesseract) Lang() string { return t.cfg.Lang }

// Recognize runs `tesseract <file> stdout -l <lang>` and returns stdout unchanged.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	out, errb, err := t.runner.Run(ctx, t.cfg.Binary, t.args(imagePath)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("tesseract: %w", ctx.Err())
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(truncate(string(errb), 512)))
	}
	return string(out), nil
}

func (t *Tesseract) args(imagePath string) []string {
	args := []string{imagePath, "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}
