package ingest

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// DefaultMaxFileSize is the byte ceiling for a single creative (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// Reason codes returned by the admission policy.
type Reason string

const (
	ReasonTypeInvalid Reason = "type-invalid"
	ReasonTooLarge    Reason = "too-large"
)

// AcceptedTypes lists admitted MIME types and their usual extensions.
var AcceptedTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

// AdmissionError explains why a file was rejected.
type AdmissionError struct {
	Name    string
	Reason  Reason
	MaxSize int64
}

func (e *AdmissionError) Error() string {
	switch e.Reason {
	case ReasonTooLarge:
		return fmt.Sprintf("File %q is too large. Maximum size is %dMB.", e.Name, e.MaxSize/(1024*1024))
	case ReasonTypeInvalid:
		return fmt.Sprintf("File %q has an invalid type. Accepted: JPG, PNG, GIF, WebP.", e.Name)
	default:
		return fmt.Sprintf("File %q couldn't be uploaded.", e.Name)
	}
}

// Policy filters raw uploads before ingestion.
type Policy struct {
	MaxSize int64
}

// Admit resolves the MIME type of f, storing it back into f.Type, and checks
// it against AcceptedTypes and MaxSize. The type is sniffed from the content
// when the caller did not report one.
func (p Policy) Admit(f *RawFile) error {
	maxSize := p.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	mediaType := f.Type
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(f.Data)
	}
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	mediaType = strings.ToLower(mediaType)

	if _, ok := AcceptedTypes[mediaType]; !ok {
		return &AdmissionError{Name: f.Name, Reason: ReasonTypeInvalid, MaxSize: maxSize}
	}
	if int64(len(f.Data)) > maxSize {
		return &AdmissionError{Name: f.Name, Reason: ReasonTooLarge, MaxSize: maxSize}
	}
	f.Type = mediaType
	return nil
}
