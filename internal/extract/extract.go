package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"golang.org/x/text/unicode/norm"
)

const (
	mimePDF   = "application/pdf"
	mimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeHTML  = "text/html"
	mimePlain = "text/plain"
	mimeZip   = "application/zip"

	// MaxPDFPages bounds how much of a PDF is read.
	MaxPDFPages = 5
	// MaxTextRunes bounds the text forwarded to the model per document.
	MaxTextRunes = 30000
)

var (
	ErrEmptyDocument   = errors.New("empty document")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoText          = errors.New("no extractable text")
)

// Text is plain text derived from an uploaded document.
type Text struct {
	Content   string
	MimeType  string
	Pages     int
	Truncated bool
	Language  string
}

// ExtractionError reports an upload whose text could not be read.
type ExtractionError struct {
	Field    string
	FileName string
	MimeType string
	Reason   string
	Err      error
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	b.WriteString("extract")
	if e.Field != "" {
		b.WriteString(" field=" + e.Field)
	}
	if e.FileName != "" {
		b.WriteString(" file=" + e.FileName)
	}
	if e.MimeType != "" {
		b.WriteString(" mime=" + e.MimeType)
	}
	b.WriteString(": " + e.Reason)
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ExtractTextFromBytes extracts text from an in-memory payload.
// The declared MIME type and file extension are hints; the content is sniffed.
func ExtractTextFromBytes(ctx context.Context, data []byte, declaredMime string, fileName string) (Text, error) {
	if err := ctx.Err(); err != nil {
		return Text{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Text{}, &ExtractionError{FileName: fileName, Reason: "file is empty", Err: ErrEmptyDocument}
	}

	detected := detectType(declaredMime, fileName, data)
	out := Text{MimeType: detected}
	var (
		raw string
		err error
	)
	switch detected {
	case mimePDF:
		raw, out.Pages, err = extractPDF(data)
	case mimeDOCX:
		raw, err = extractDOCX(data)
	case mimeHTML:
		raw, err = extractHTML(data)
	case mimePlain:
		raw = string(data)
	default:
		return Text{}, &ExtractionError{FileName: fileName, MimeType: detected, Reason: "unsupported mime type: " + detected, Err: ErrUnsupportedType}
	}
	if err != nil {
		return Text{}, &ExtractionError{FileName: fileName, MimeType: detected, Reason: "parse failed", Err: err}
	}

	out.Content, out.Truncated = truncateRunes(normalizeText(raw), MaxTextRunes)
	if out.Content == "" {
		return Text{}, &ExtractionError{FileName: fileName, MimeType: detected, Reason: "no text found", Err: ErrNoText}
	}
	out.Language = DetectLanguage(out.Content)
	return out, nil
}

func extractPDF(data []byte) (text string, pages int, err error) {
	// The PDF reader panics on some malformed streams.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf reader panic: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, err
	}
	total := reader.NumPage()
	limit := min(total, MaxPDFPages)
	fonts := make(map[string]*pdf.Font)
	var buf strings.Builder
	for i := 1; i <= limit; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(fonts)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		buf.WriteString(content)
		buf.WriteString("\n")
	}
	return buf.String(), limit, nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return stripDocxXML(doc.Editable().GetContent()), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString(" ")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func extractHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template").Remove()
	doc.Find("br, p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Text(), nil
	}
	return body.Text(), nil
}

func detectType(declared, fileName string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	m := mimetype.Detect(data)
	switch {
	case m.Is(mimePDF):
		return mimePDF
	case m.Is(mimeDOCX):
		return mimeDOCX
	case m.Is(mimeZip):
		if isDOCXZip(data) || ext == ".docx" {
			return mimeDOCX
		}
		return mimeZip
	case m.Is(mimeHTML):
		return mimeHTML
	case m.Is(mimePlain):
		if ext == ".html" || ext == ".htm" || baseMime(declared) == mimeHTML {
			return mimeHTML
		}
		return mimePlain
	}
	return baseMime(m.String())
}

func isDOCXZip(data []byte) bool {
	return bytes.Contains(data, []byte("word/document.xml"))
}

func baseMime(raw string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(raw, ";")[0]))
}

func normalizeText(raw string) string {
	raw = norm.NFC.String(strings.ToValidUTF8(raw, ""))
	raw = strings.ReplaceAll(raw, "\x00", "")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		clean := strings.Join(strings.Fields(line), " ")
		if clean == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, clean)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func truncateRunes(s string, max int) (string, bool) {
	if max <= 0 {
		return s, false
	}
	count := 0
	for i := range s {
		if count == max {
			return strings.TrimSpace(s[:i]), true
		}
		count++
	}
	return s, false
}
