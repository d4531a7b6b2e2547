// Package extract 负责从上传的文件中提取纯文本。
// PDF 使用内置解析器；纯文本直接透传；其余格式在配置了 Tika 服务器时交给 Tika。
package extract

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"guideline-tutor-go/pkg/tika"

	pdf "github.com/ledongthuc/pdf"
)

// Extractor 聚合内置解析与可选的 Tika 兜底。
type Extractor struct {
	tikaClient *tika.Client
}

// NewExtractor 创建一个 Extractor。tikaClient 可为 nil 或未启用。
func NewExtractor(tikaClient *tika.Client) *Extractor {
	return &Extractor{tikaClient: tikaClient}
}

// ExtractText 根据内容嗅探提取文本。
func (e *Extractor) ExtractText(fileName string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("文件内容为空: %s", fileName)
	}

	// 优先按魔数嗅探，扩展名不可信
	if isPDF(data) {
		return extractPDF(data)
	}
	if isProbablyText(data) {
		return collapseWhitespace(string(data)), nil
	}

	// 其余格式（docx、pptx 等）交给 Tika 服务器处理
	if e.tikaClient.Enabled() {
		return e.tikaClient.ExtractText(bytes.NewReader(data), fileName)
	}
	return "", fmt.Errorf("不支持的文件类型: %s", fileName)
}

// isPDF 检查 "%PDF-" 魔数。
func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

// isProbablyText 判断内容是否大概率为纯文本（无 NUL 且多数字节可打印）。
func isProbablyText(b []byte) bool {
	n := len(b)
	if n > 4096 {
		n = 4096
	}
	sample := b[:n]
	good := 0
	for _, c := range sample {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
			good++
		}
	}
	return n > 0 && float64(good)/float64(n) > 0.95
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return collapseWhitespace(string(b)), nil
}

var spaceRe = regexp.MustCompile(`[ \t]+`)

// collapseWhitespace 压缩行内空白并去掉首尾空白。
func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
