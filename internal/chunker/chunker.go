// Package chunker 将长文本切分为带重叠的固定窗口，作为检索的最小粒度。
package chunker

// Chunk 将文本按 size 大小、overlap 重叠进行切分（按字符计数）。
// 除最后一块外每块长度恰为 size，相邻块重叠恰为 overlap 个字符。
// text 为空时返回空；size <= overlap 是不可终止的配置，同样返回空，
// 而不是沿用朴素的步进公式陷入死循环。
func Chunk(text string, size, overlap int) []string {
	if size <= 0 || overlap < 0 || size <= overlap {
		return nil
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
