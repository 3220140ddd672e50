package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`
	rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`
	docRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
)

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="` + wordNS + `"><w:body>` + body + `</w:body></w:document>`
}

func para(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"[Content_Types].xml":          contentTypesXML,
		"_rels/.rels":                  rootRelsXML,
		"word/_rels/document.xml.rels": docRelsXML,
		"word/document.xml":            documentXML(body),
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxExtractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.docx")
	require.NoError(t, os.WriteFile(path, buildDocx(t, para("Jane Doe")+para("Engineer")), 0o600))

	res := NewDocxExtractor(nil).Extract(context.Background(), path)
	assert.Equal(t, "Jane Doe\nEngineer", res.Text)
	assert.Equal(t, constants.MethodDOCX, res.Method)
	assert.Equal(t, constants.DOCX, res.SourceType)
	assert.Empty(t, res.Warnings)
}

func TestDocxExtractorCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	res := NewDocxExtractor(nil).Extract(context.Background(), path)
	assert.Empty(t, res.Text)
	assert.Equal(t, constants.MethodNone, res.Method)
	assert.NotEmpty(t, res.Warnings)
}

func TestParseParagraphs(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{
			name:     "runs join within a paragraph",
			body:     `<w:p><w:r><w:t>Jane </w:t></w:r><w:r><w:t>Doe</w:t></w:r></w:p>`,
			expected: []string{"Jane Doe"},
		},
		{
			name:     "empty paragraph kept",
			body:     para("A") + `<w:p/>` + para("B"),
			expected: []string{"A", "", "B"},
		},
		{
			name:     "tab and break",
			body:     `<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go</w:t><w:br/><w:t>SQL</w:t></w:r></w:p>`,
			expected: []string{"Skills:\tGo\nSQL"},
		},
		{
			name:     "table paragraphs skipped",
			body:     para("Before") + `<w:tbl><w:tr><w:tc>` + para("Cell") + `</w:tc></w:tr></w:tbl>` + para("After"),
			expected: []string{"Before", "After"},
		},
		{
			name:     "text box skipped",
			body:     `<w:p><w:r><w:t>Main</w:t></w:r><w:r><w:pict><w:txbxContent>` + para("Boxed") + `</w:txbxContent></w:pict></w:r></w:p>`,
			expected: []string{"Main"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paras, err := parseParagraphs(documentXML(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, paras)
		})
	}
}

func TestParseParagraphsMalformed(t *testing.T) {
	_, err := parseParagraphs(`<w:document xmlns:w="` + wordNS + `"><w:body><w:p>`)
	assert.Error(t, err)
}

func TestDocxParagraphsFromMemory(t *testing.T) {
	paras, err := DocxParagraphs(buildDocx(t, para("Line &amp; more")))
	require.NoError(t, err)
	assert.Equal(t, []string{"Line & more"}, paras)
	assert.False(t, strings.Contains(paras[0], "&amp;"))
}
