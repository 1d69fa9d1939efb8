package services

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/utils"
)

// TextExtractor turns uploaded files into plain text with page/slide markers.
// Extraction never raises past this boundary: every failure is logged and
// becomes an empty string, which upload validation then rejects.
type TextExtractor struct {
	log      *logger.Logger
	minWords int
}

func NewTextExtractor(baseLog *logger.Logger) *TextExtractor {
	extractorLog := baseLog.With("service", "TextExtractor")
	minWords := utils.GetEnvAsInt("EXTRACT_MIN_WORDS", 10, baseLog)
	return &TextExtractor{log: extractorLog, minWords: minWords}
}

// ExtractFile reads a stored file and extracts its text.
func (e *TextExtractor) ExtractFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		e.log.Error("Failed to read file for extraction", "path", path, "error", err)
		return ""
	}
	return e.Extract(filepath.Base(path), data)
}

// Extract dispatches on the lowercase file extension.
func (e *TextExtractor) Extract(name string, data []byte) string {
	if len(data) == 0 {
		e.log.Warn("Empty file, nothing to extract", "name", name)
		return ""
	}

	ext := strings.ToLower(filepath.Ext(name))
	var text string
	switch ext {
	case ".pdf":
		text = e.extractPDF(name, data)
	case ".pptx", ".ppt":
		text = e.extractPresentation(name, data)
	case ".txt":
		text = decodeText(data)
	default:
		e.log.Warn("Unsupported file type for extraction", "name", name, "ext", ext)
		return ""
	}
	return normalizeText(text)
}

// ValidateForProcessing reports whether extracted text is usable, with a
// reason naming the failure when it is not.
func (e *TextExtractor) ValidateForProcessing(text string) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return false, "no text could be extracted"
	}
	if words := len(strings.Fields(text)); words < e.minWords {
		return false, fmt.Sprintf("document too short: %d words, need at least %d", words, e.minWords)
	}
	return true, ""
}

func (e *TextExtractor) extractPDF(name string, data []byte) string {
	if !isPDF(data) {
		e.log.Warn("File claims pdf but missing %PDF header", "name", name, "head", firstBytesHex(data, 16))
		return ""
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.log.Error("Failed to open pdf", "name", name, "error", err)
		return ""
	}

	var out strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Warn("Failed to extract pdf page", "name", name, "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		fmt.Fprintf(&out, "--- Page %d ---\n%s\n", i, content)
	}
	return out.String()
}

var slideFileRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

func (e *TextExtractor) extractPresentation(name string, data []byte) string {
	// Legacy binary .ppt is not a zip container and yields no text.
	if !isZip(data) {
		e.log.Warn("Presentation is not a valid zip container", "name", name, "head", firstBytesHex(data, 16))
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.log.Error("Failed to open presentation archive", "name", name, "error", err)
		return ""
	}

	type slideFile struct {
		num  int
		file *zip.File
	}
	var slides []slideFile
	for _, f := range zr.File {
		m := slideFileRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{num: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var out strings.Builder
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			e.log.Warn("Failed to open slide", "name", name, "slide", s.num, "error", err)
			continue
		}
		b, _ := io.ReadAll(rc)
		_ = rc.Close()
		text := strings.TrimSpace(gatherXMLText(b, "t"))
		if text == "" {
			continue
		}
		fmt.Fprintf(&out, "--- Slide %d ---\n%s\n", s.num, text)
	}
	return out.String()
}

// decodeText tries encodings in a fixed order: UTF-16 by BOM, UTF-8 (BOM
// stripped), then Latin-1, which maps every byte to a code point and so
// always yields something.
func decodeText(data []byte) string {
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		return decodeUTF16(data[2:], binary.LittleEndian)
	}
	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		return decodeUTF16(data[2:], binary.BigEndian)
	}
	stripped := bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(stripped) {
		return string(stripped)
	}
	var sb strings.Builder
	sb.Grow(len(data))
	for _, c := range data {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

func decodeUTF16(b []byte, order binary.ByteOrder) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, order.Uint16(b[i:]))
	}
	return string(utf16.Decode(units))
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// normalizeText trims every line, drops blank lines (markers always survive
// because they carry text), collapses runs of newlines and trims the result.
func normalizeText(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	out := strings.Join(kept, "\n")
	out = excessNewlines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func isPDF(b []byte) bool {
	// PDF starts with "%PDF-"
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
	// ZIP local file header: PK\x03\x04
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func firstBytesHex(b []byte, n int) string {
	if len(b) < n {
		n = len(b)
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		out = append(out, hexdigits[b[i]>>4], hexdigits[b[i]&0x0f])
	}
	return string(out)
}

// gatherXMLText walks an OpenXML part and joins the character data of every
// element whose local name matches, e.g. "t" for the <a:t> runs in slides.
func gatherXMLText(xmlBytes []byte, local string) string {
	dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != local {
			continue
		}
		var v string
		_ = dec.DecodeElement(&v, &se)
		if v != "" {
			out.WriteString(v)
			out.WriteString(" ")
		}
	}
	return out.String()
}
