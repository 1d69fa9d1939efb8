package services

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
)

const slideXMLTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
       xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody>
    <a:p><a:r><a:t>BODY</a:t></a:r></a:p>
  </p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func slideXML(text string) string {
	return strings.ReplaceAll(slideXMLTemplate, "BODY", text)
}

func TestExtractTXT(t *testing.T) {
	e := NewTextExtractor(logger.NewNop())

	content := "the quick brown fox jumps over the lazy dog every day"
	got := e.Extract("notes.txt", []byte(content))
	assert.Equal(t, content, got)
}

func TestExtractTXTEncodings(t *testing.T) {
	e := NewTextExtractor(logger.NewNop())

	t.Run("utf8 bom stripped", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello world")...)
		assert.Equal(t, "hello world", e.Extract("a.txt", data))
	})

	t.Run("utf16 little endian", func(t *testing.T) {
		data := []byte{0xFF, 0xFE, 'h', 0, 'i', 0}
		assert.Equal(t, "hi", e.Extract("a.txt", data))
	})

	t.Run("utf16 big endian", func(t *testing.T) {
		data := []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}
		assert.Equal(t, "hi", e.Extract("a.txt", data))
	})

	t.Run("latin1 fallback", func(t *testing.T) {
		// 0xE9 is é in Latin-1 and invalid standalone UTF-8.
		data := []byte{'c', 'a', 'f', 0xE9}
		assert.Equal(t, "café", e.Extract("a.txt", data))
	})
}

func TestExtractUnsupportedAndEmpty(t *testing.T) {
	e := NewTextExtractor(logger.NewNop())

	assert.Empty(t, e.Extract("image.png", []byte{0x89, 'P', 'N', 'G'}))
	assert.Empty(t, e.Extract("notes.txt", nil))
	assert.Empty(t, e.Extract("claims.pdf", []byte("not a real pdf")))
	assert.Empty(t, e.Extract("claims.pptx", []byte("not a zip")))
}

func TestExtractPPTXOrdersSlides(t *testing.T) {
	e := NewTextExtractor(logger.NewNop())

	data := buildZip(t, map[string]string{
		"ppt/slides/slide10.xml": slideXML("tenth slide content"),
		"ppt/slides/slide2.xml":  slideXML("second slide content"),
		"ppt/slides/slide1.xml":  slideXML("first slide content"),
		"ppt/presentation.xml":   `<?xml version="1.0"?><p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`,
	})

	got := e.Extract("deck.pptx", data)
	first := strings.Index(got, "--- Slide 1 ---")
	second := strings.Index(got, "--- Slide 2 ---")
	tenth := strings.Index(got, "--- Slide 10 ---")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	require.Greater(t, tenth, second)
	assert.Contains(t, got, "first slide content")
	assert.Contains(t, got, "tenth slide content")
}

func TestExtractPPTXSkipsEmptySlides(t *testing.T) {
	e := NewTextExtractor(logger.NewNop())

	data := buildZip(t, map[string]string{
		"ppt/slides/slide1.xml": slideXML("only slide with text"),
		"ppt/slides/slide2.xml": slideXML("   "),
	})

	got := e.Extract("deck.pptx", data)
	assert.Contains(t, got, "--- Slide 1 ---")
	assert.NotContains(t, got, "--- Slide 2 ---")
}

func TestExtractFileReadsFromDisk(t *testing.T) {
	e := NewTextExtractor(logger.NewNop())

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("words on disk for the extractor to find here"), 0o644))

	assert.Equal(t, "words on disk for the extractor to find here", e.ExtractFile(path))
	assert.Empty(t, e.ExtractFile(filepath.Join(dir, "missing.txt")))
}

func TestNormalizeText(t *testing.T) {
	in := "  line one  \n\n\n\n   line two\t\n\n--- Page 2 ---\n  line three  \n\n"
	got := normalizeText(in)

	assert.Equal(t, "line one\nline two\n--- Page 2 ---\nline three", got)
	assert.NotContains(t, got, "\n\n\n")
	assert.Equal(t, got, strings.TrimSpace(got))
}

func TestValidateForProcessing(t *testing.T) {
	e := NewTextExtractor(logger.NewNop())

	ok, reason := e.ValidateForProcessing("")
	assert.False(t, ok)
	assert.Equal(t, "no text could be extracted", reason)

	ok, reason = e.ValidateForProcessing("   \n\t ")
	assert.False(t, ok)
	assert.Equal(t, "no text could be extracted", reason)

	ok, reason = e.ValidateForProcessing("too few words here")
	assert.False(t, ok)
	assert.Contains(t, reason, "too short")

	ok, reason = e.ValidateForProcessing("one two three four five six seven eight nine ten")
	assert.True(t, ok)
	assert.Empty(t, reason)
}
