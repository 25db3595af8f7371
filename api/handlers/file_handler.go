package handlers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/mediagrab-go/internal/domain"
)

// FileHandler serves fetched files from the output directory
type FileHandler struct {
	outputDir string
}

// NewFileHandler creates a new file handler
func NewFileHandler(outputDir string) *FileHandler {
	return &FileHandler{outputDir: outputDir}
}

// GetFile handles GET /file/:filename
func (h *FileHandler) GetFile(c *gin.Context) {
	name := c.Param("filename")
	if !isPlainFilename(name) {
		respondValidation(c, "invalid filename")
		return
	}

	path := filepath.Join(h.outputDir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		respondError(c, domain.NewError(domain.ErrKindNotFound, "serve file", errors.New("file not found")), 0)
		return
	}

	c.FileAttachment(path, name)
}

// isPlainFilename accepts a single path element inside the output directory
func isPlainFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name && !filepath.IsAbs(name)
}
