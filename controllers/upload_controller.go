// File: controllers/upload_controller.go
package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"athmageeth-portal/logger"
	"athmageeth-portal/receipts"
)

// multipartOverhead allows for form fields and boundaries around the file.
const multipartOverhead = 1 << 20

// ReceiptSaver stores an uploaded receipt and returns its URL.
type ReceiptSaver interface {
	Save(ctx context.Context, r io.Reader, institutionHint string) (string, error)
	MaxBytes() int64
}

// UploadController accepts payment receipt images.
type UploadController struct {
	Service ReceiptSaver
}

// NewUploadController initializes an UploadController.
func NewUploadController(service ReceiptSaver) *UploadController {
	return &UploadController{Service: service}
}

// Upload handles a multipart form with a "file" part and an optional
// "instituteName" used to name the stored file.
func (uc *UploadController) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uc.Service.MaxBytes()+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
			return
		}
		logger.Debug.Printf("[Upload] no file in request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		logger.Error.Printf("[Upload] opening %s: %v", fh.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	defer f.Close()

	url, err := uc.Service.Save(c.Request.Context(), f, c.PostForm("instituteName"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
	case errors.Is(err, receipts.ErrNoFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
	case errors.Is(err, receipts.ErrNotImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files are allowed"})
	case errors.Is(err, receipts.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
	default:
		logger.Error.Printf("[Upload] saving receipt: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
	}
}
