package services

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeText = "text/plain"
)

var supportedTypes = map[string]struct{}{
	MimePDF:  {},
	MimeDOC:  {},
	MimeDOCX: {},
	MimeJPEG: {},
	MimePNG:  {},
	MimeText: {},
}

var (
	ErrUnsupportedType = errors.New("file type not supported. Please upload PDF, Word, Image or Text files")
	// ErrNoTextContent means the document has no extractable text layer and
	// has to be sent to the model as inline bytes.
	ErrNoTextContent = errors.New("no text content found in document")
)

// Document is one uploaded file.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Checksum identifies the document content for caching.
func (d Document) Checksum() string {
	sum := sha256.Sum256(append([]byte(d.ContentType+"\x00"), d.Data...))
	return hex.EncodeToString(sum[:])
}

// NormalizeContentType strips media-type parameters and lowercases the type.
// It returns ErrUnsupportedType for anything outside the accepted set.
func NormalizeContentType(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	if _, ok := supportedTypes[mediaType]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
	}
	return mediaType, nil
}

type DocumentParser interface {
	ExtractText(data []byte, contentType string) (string, error)
}

type documentParser struct{}

func NewDocumentParser() DocumentParser {
	return &documentParser{}
}

// ExtractText returns the plain text of a PDF, DOCX or text document.
// Images, legacy Word files and PDFs without a text layer yield
// ErrNoTextContent.
func (p *documentParser) ExtractText(data []byte, contentType string) (string, error) {
	switch contentType {
	case MimeText:
		text := CleanText(string(data))
		if text == "" {
			return "", fmt.Errorf("empty text document: %w", ErrNoTextContent)
		}
		return text, nil
	case MimeDOCX:
		return extractDocxText(data)
	case MimePDF:
		return extractPDFText(data)
	case MimeDOC, MimeJPEG, MimePNG:
		return "", ErrNoTextContent
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF (%v): %w", err, ErrNoTextContent)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := CleanText(textBuilder.String())
	if text == "" {
		return "", ErrNoTextContent
	}

	return text, nil
}

var (
	xmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	spacePattern  = regexp.MustCompile(`[ \t\r\f\v]+`)
)

func extractDocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read document.xml: %w", err)
		}
		break
	}
	if len(docXML) == 0 {
		return "", errors.New("no document.xml found in DOCX")
	}

	xml := string(docXML)
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	xml = xmlTagPattern.ReplaceAllString(xml, "")

	text := CleanText(unescapeXML(xml))
	if text == "" {
		return "", fmt.Errorf("empty DOCX document: %w", ErrNoTextContent)
	}
	return text, nil
}

var xmlEntities = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}

// CleanText trims every line, collapses runs of blanks and drops empty lines.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
