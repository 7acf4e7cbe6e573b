package gemini

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	mimePDF  = "application/pdf"
	mimePPT  = "application/vnd.ms-powerpoint"
	mimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds the inline size limit")
	ErrUnsupportedType = errors.New("unsupported file type: expected an image, a PDF or a PowerPoint deck")
)

// DocumentFile is an uploaded document held in memory for one request.
type DocumentFile struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Size returns the document size in bytes.
func (d DocumentFile) Size() int64 { return int64(len(d.Data)) }

// Kind is a short label for previews: "Image", "PDF", "PPTX" or "File".
func (d DocumentFile) Kind() string {
	switch {
	case strings.HasPrefix(d.MIMEType, "image/"):
		return "Image"
	case d.MIMEType == mimePDF:
		return "PDF"
	case strings.Contains(d.MIMEType, "presentation"), d.MIMEType == mimePPT:
		return "PPTX"
	default:
		return "File"
	}
}

// NewDocumentFile reads r fully and checks that it is a supported course document.
func NewDocumentFile(r io.Reader, filename string) (*DocumentFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInlineSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyFile)
	}
	if len(data) > MaxInlineSize {
		return nil, fmt.Errorf("%s: %w", filename, ErrFileTooLarge)
	}

	mimeType, ok := detectMIME(data, filename)
	if !ok {
		return nil, fmt.Errorf("%s (%s): %w", filename, mimeType, ErrUnsupportedType)
	}

	return &DocumentFile{
		Name:     filename,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

// detectMIME sniffs the content; slide decks sniff as generic containers, so the
// extension settles those.
func detectMIME(data []byte, filename string) (string, bool) {
	detected := mimetype.Detect(data)
	base := detected.String()
	if i := strings.Index(base, ";"); i >= 0 {
		base = base[:i]
	}

	switch {
	case strings.HasPrefix(base, "image/"), base == mimePDF, base == mimePPTX, base == mimePPT:
		return base, true
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".pptx" && detected.Is("application/zip"):
		return mimePPTX, true
	case ext == ".ppt" && detected.Is("application/x-ole-storage"):
		return mimePPT, true
	}
	return base, false
}
