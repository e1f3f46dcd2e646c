package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	apperrors "account-service/pkg/errors"
	"account-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const stagedFilesKey = "staged_files"

// StageFiles saves the first file of each named multipart field into dir
// before the handler runs and deletes whatever is left afterwards. Requests
// that are not multipart pass through untouched.
func StageFiles(dir string, maxBytes int64, l *logger.Logger, fields ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			c.Next()
			return
		}
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		form, err := c.MultipartForm()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				_ = c.Error(&apperrors.APIError{Status: http.StatusRequestEntityTooLarge, Message: "Upload is too large", Err: apperrors.ErrTooLarge})
			} else {
				_ = c.Error(apperrors.Validation("Malformed multipart body"))
			}
			c.Abort()
			return
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = c.Error(apperrors.Internal("Error staging upload", err))
			c.Abort()
			return
		}

		staged := make(map[string]string, len(fields))
		defer func() {
			for _, p := range staged {
				if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) && l != nil {
					l.WarnCtx(c.Request.Context(), "failed to remove staged file", zap.String("path", p), zap.Error(err))
				}
			}
		}()

		for _, field := range fields {
			files := form.File[field]
			if len(files) == 0 {
				continue
			}
			header := files[0]
			dst := filepath.Join(dir, fmt.Sprintf("%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(header.Filename))))
			if err := c.SaveUploadedFile(header, dst); err != nil {
				_ = c.Error(apperrors.Internal("Error staging upload", err))
				c.Abort()
				return
			}
			staged[field] = dst
		}

		c.Set(stagedFilesKey, staged)
		c.Next()
	}
}

// StagedFile returns the local path saved for field, or "".
func StagedFile(c *gin.Context, field string) string {
	value, ok := c.Get(stagedFilesKey)
	if !ok {
		return ""
	}
	staged, ok := value.(map[string]string)
	if !ok {
		return ""
	}
	return staged[field]
}
