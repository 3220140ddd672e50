package constants

import "strings"

// Format is the declared document format, derived from the upload's extension.
type Format string

const (
	PDF   Format = "PDF"
	DOCX  Format = "DOCX"
	IMAGE Format = "IMAGE"
)

// FileTypes holds the formats stored in extraction_jobs.format.
var FileTypes = []Format{PDF, DOCX, IMAGE}

// AllowedExtensions holds the file extensions accepted for resume uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// DefaultUploadDir mirrors the folder uploads were archived to before storage became pluggable.
const DefaultUploadDir = "uploads"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsAllowedExt reports whether ext (with or without dot, any case) is accepted.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// MapExtToFormat returns the Format for an extension, or "" when unsupported.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	case "jpg", "jpeg", "png":
		return IMAGE
	default:
		return ""
	}
}

// ContentType is the archive content type for a format/extension pair.
func ContentType(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "application/pdf"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
