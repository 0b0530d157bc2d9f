package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// PDFProcessor extracts text from PDF emails
type PDFProcessor struct {
	Path     string
	NumPages int

	mu  sync.Mutex
	doc *fitz.Document
}

// NewPDFProcessor opens the document at path
func NewPDFProcessor(path string) (*PDFProcessor, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}

	return &PDFProcessor{
		Path:     path,
		NumPages: doc.NumPage(),
		doc:      doc,
	}, nil
}

// Close cleans up resources
func (p *PDFProcessor) Close() {
	if p.doc != nil {
		p.doc.Close()
	}
}

// ExtractText extracts all text from the PDF
func (p *PDFProcessor) ExtractText() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	for i := 0; i < p.NumPages; i++ {
		text, err := p.doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("error extracting text from page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// ReadEmail returns the text of an email file. PDFs go through go-fitz,
// everything else (.txt, .eml) is read as-is.
func ReadEmail(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		proc, err := NewPDFProcessor(path)
		if err != nil {
			return "", err
		}
		defer proc.Close()
		return proc.ExtractText()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading email: %w", err)
	}
	return string(data), nil
}
