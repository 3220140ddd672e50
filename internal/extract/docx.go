package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// DocxExtractor returns body paragraphs one per line.
type DocxExtractor struct {
	logger *slog.Logger
}

func NewDocxExtractor(logger *slog.Logger) *DocxExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocxExtractor{logger: logger}
}

func (e *DocxExtractor) Extract(_ context.Context, path string) TextExtractionResult {
	res := TextExtractionResult{SourceType: constants.DOCX, Method: constants.MethodNone}

	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Error("extract.docx.read_failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}
	paras, err := DocxParagraphs(data)
	if err != nil {
		e.logger.Error("extract.docx.parse_failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}

	res.Text = strings.Join(paras, "\n")
	res.Pages = 1
	res.Method = constants.MethodDOCX
	res.Confidence = heuristicConfidence(res.Text)
	e.logger.Debug("extract.docx.ok", "path", path, "paragraphs", len(paras), "text_len", len(res.Text))
	return res
}

// DocxParagraphs returns the text of each top-level body paragraph in document order.
func DocxParagraphs(data []byte) (paras []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			paras, err = nil, fmt.Errorf("docx: decoder panic: %v", rec)
		}
	}()

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx: open: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return parseParagraphs(doc.Editable().GetContent())
}

// parseParagraphs walks word/document.xml. Paragraphs nested in tables are skipped,
// as is anything under text boxes or markup-compatibility wrappers; w:tab and
// w:br inside runs become "\t" and "\n".
func parseParagraphs(documentXML string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))
	var (
		stack     []string
		paras     []string
		cur       strings.Builder
		paraDepth = -1 // len(stack) when the current body paragraph opened
		inText    bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx: xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inRun := paraDepth >= 0 && inRunScope(stack[paraDepth+1:])
			if t.Name.Space == wordNS {
				switch t.Name.Local {
				case "p":
					if paraDepth < 0 && len(stack) > 0 && stack[len(stack)-1] == "body" {
						paraDepth = len(stack)
						cur.Reset()
					}
				case "t":
					inText = inRun
				case "tab":
					if inRun {
						cur.WriteByte('\t')
					}
				case "br", "cr":
					if inRun {
						cur.WriteByte('\n')
					}
				}
			}
			stack = append(stack, localName(t.Name))
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if paraDepth >= 0 && len(stack) == paraDepth {
					paras = append(paras, cur.String())
					paraDepth = -1
				}
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return paras, nil
}

// inRunScope reports whether the path below a body paragraph ends in a run that
// is not inside a text box or a non-WordprocessingML wrapper.
func inRunScope(path []string) bool {
	if len(path) == 0 || path[len(path)-1] != "r" {
		return false
	}
	for _, name := range path {
		if name == "txbxContent" || strings.Contains(name, ":") {
			return false
		}
	}
	return true
}

// localName keeps only WordprocessingML names so structural checks ignore other namespaces.
func localName(n xml.Name) string {
	if n.Space == wordNS {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
