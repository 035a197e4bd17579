package domain

// ExtractionFailure is the typed reason an extraction produced no text.
type ExtractionFailure string

const (
	ExtractionOK                ExtractionFailure = ""
	ExtractionUnsupported       ExtractionFailure = "unsupported_format"
	ExtractionEngineUnavailable ExtractionFailure = "engine_unavailable"
	ExtractionFailed            ExtractionFailure = "extraction_failed"
	ExtractionNoText            ExtractionFailure = "no_text"
)

const (
	MethodPDFText       = "pdf-text"
	MethodPDFOCR        = "pdf-ocr"
	MethodDocx          = "docx"
	MethodPlainText     = "plain-text"
	MethodSpreadsheet   = "spreadsheet"
	MethodEmail         = "email"
	MethodImageOCR      = "image-ocr"
	MethodTranscription = "transcription"
	MethodNone          = "none"
)

// Extraction is the best-effort text of an uploaded file. Text is trimmed and
// may be empty; Err is kept for diagnostics only and never propagates.
type Extraction struct {
	Text    string            `json:"-"`
	Method  string            `json:"method"`
	Failure ExtractionFailure `json:"failure,omitempty"`
	Err     error             `json:"-"`
}

func (e Extraction) HasText() bool {
	return e.Text != ""
}
