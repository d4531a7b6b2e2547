package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guideline-tutor-go/internal/config"
	"guideline-tutor-go/pkg/tika"
)

func newOfflineExtractor() *Extractor {
	return NewExtractor(tika.NewClient(config.TikaConfig{}))
}

func TestExtractText_PlainTextPassthrough(t *testing.T) {
	e := newOfflineExtractor()

	text, err := e.ExtractText("notes.txt", []byte("Line one.\r\nLine   two with   spaces.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Line one.\nLine two with spaces.", text)
}

func TestExtractText_UTF8Text(t *testing.T) {
	e := newOfflineExtractor()

	text, err := e.ExtractText("cn.txt", []byte("心力衰竭诊疗指南 第一章"))
	require.NoError(t, err)
	assert.Contains(t, text, "心力衰竭")
}

func TestExtractText_EmptyFile(t *testing.T) {
	e := newOfflineExtractor()

	_, err := e.ExtractText("empty.txt", nil)
	assert.Error(t, err)
}

func TestExtractText_BinaryWithoutTikaRejected(t *testing.T) {
	e := newOfflineExtractor()

	// ZIP magic bytes followed by NULs: not a PDF, not text.
	data := append([]byte("PK\x03\x04"), make([]byte, 64)...)
	_, err := e.ExtractText("slides.pptx", data)
	assert.Error(t, err)
}

func TestExtractText_CorruptPDFRejected(t *testing.T) {
	e := newOfflineExtractor()

	_, err := e.ExtractText("broken.pdf", []byte("%PDF-1.7 this is not a real pdf body"))
	assert.Error(t, err)
}

func TestIsPDF_SniffsMagicBytesNotExtension(t *testing.T) {
	assert.True(t, isPDF([]byte("%PDF-1.4 ...")))
	assert.False(t, isPDF([]byte("plain text named whatever.pdf")))
	assert.False(t, isPDF([]byte("%PD")))
}

func TestIsProbablyText(t *testing.T) {
	assert.True(t, isProbablyText([]byte("ordinary ascii content\n")))
	assert.True(t, isProbablyText([]byte("含有中文的文本")))
	assert.False(t, isProbablyText([]byte{0x00, 0x01, 0x02, 0x03}))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b\nc", collapseWhitespace("  a \t b\r\nc  "))
	assert.Equal(t, "", collapseWhitespace(" \t "))
}
