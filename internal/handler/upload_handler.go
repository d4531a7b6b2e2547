// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"guideline-tutor-go/internal/middleware"
	"guideline-tutor-go/internal/pipeline"
	"guideline-tutor-go/pkg/log"
)

// 单次上传的总大小上限（所有文件合计）。
const maxUploadBytes = 50 << 20

// UploadHandler 负责文档上传与同步摄取。
type UploadHandler struct {
	processor *pipeline.Processor
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。
func NewUploadHandler(processor *pipeline.Processor) *UploadHandler {
	return &UploadHandler{processor: processor}
}

// Upload 处理 multipart 文档上传，摄取完成后才返回。
func (h *UploadHandler) Upload(c *gin.Context) {
	userID := middleware.UserIDFrom(c)
	if userID == "" {
		userID = c.PostForm("userId")
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user identity: supply X-User-Id, a session token, or a userId form field"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded: attach one or more documents under the 'files' field"})
		return
	}

	var total int64
	files := make([]pipeline.UploadedFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		total += fh.Size
		if total > maxUploadBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "upload too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file: " + fh.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file: " + fh.Filename})
			return
		}
		files = append(files, pipeline.UploadedFile{Name: fh.Filename, Data: data})
	}

	result, err := h.processor.Process(c.Request.Context(), userID, files)
	if err != nil {
		log.Errorf("Upload: 摄取失败, userID: %s, error: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process the uploaded documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "documents processed successfully",
		"chunkCount": result.ChunkCount,
		"embedded":   result.Embedded,
	})
}
