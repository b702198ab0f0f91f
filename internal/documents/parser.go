package documents

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ErrParse marks a document that could not be read. Parse failures are
// isolated per document and never abort a batch.
var ErrParse = errors.New("document parse failed")

// ParsedDocument contains text extracted from a document
type ParsedDocument struct {
	Text      string
	PageCount int
}

// Parser interface for document parsing
type Parser interface {
	Parse(filePath string) (*ParsedDocument, error)
}

// PDFParser parses PDF files
type PDFParser struct{}

// NewPDFParser creates a new PDF parser
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// Parse extracts text from a PDF file, page by page
func (p *PDFParser) Parse(filePath string) (*ParsedDocument, error) {
	doc, err := fitz.New(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PDF %s: %v", ErrParse, filepath.Base(filePath), err)
	}
	defer doc.Close()

	var textParts []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err == nil && strings.TrimSpace(text) != "" {
			textParts = append(textParts, text)
		}
	}

	return &ParsedDocument{
		Text:      strings.Join(textParts, "\n\n"),
		PageCount: doc.NumPage(),
	}, nil
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// InferMetadata derives the company name and report year from a file name,
// e.g. "Acme_2023.pdf" -> ("Acme", 2023). The year is the last plausible
// four-digit token; the company name is everything else with separators
// normalized to spaces. Either value may be empty/zero when absent.
func InferMetadata(relativePath string) (string, int) {
	base := filepath.Base(relativePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	// Separators become spaces first so the year token has word boundaries
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)

	year := 0
	if matches := yearPattern.FindAllString(base, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		year, _ = strconv.Atoi(last)
		idx := strings.LastIndex(base, last)
		base = base[:idx] + base[idx+4:]
	}

	name := strings.Join(strings.Fields(base), " ")
	name = strings.TrimSuffix(name, " annual report")
	name = strings.TrimSuffix(name, " Annual Report")

	return strings.TrimSpace(name), year
}
