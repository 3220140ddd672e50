package constants

// Method labels how the text of a document was obtained.
type Method string

const (
	MethodPDFText  Method = "pdf-text"  // every page had native text
	MethodPDFOCR   Method = "pdf-ocr"   // every page needed OCR
	MethodPDFMixed Method = "pdf-mixed" // some pages native, some OCR
	MethodDOCX     Method = "docx"
	MethodImageOCR Method = "image-ocr"
	MethodNone     Method = "none" // nothing recovered
)

// OCR defaults shared by the extractors and config.
const (
	DefaultTesseractLang = "eng"
	DefaultMaskBand      = 50.0 // PDF points
)
