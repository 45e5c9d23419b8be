// Package controllers file: controllers/page_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"athmageeth-portal/logger"
	"athmageeth-portal/services"
)

// qrSize is the edge length of the poster QR code in pixels.
const qrSize = 300

// PageController serves the small public endpoints.
type PageController struct {
	ApplicationURL string
	Encoder        services.QRCodeEncoder
}

// NewPageController initializes a PageController for the public base URL.
func NewPageController(appURL string) *PageController {
	return &PageController{ApplicationURL: appURL, Encoder: services.QRCodeEncoder(qrcode.Encode)}
}

// Health reports that the process is serving.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// GetQRCode returns a PNG QR code linking to the registration form.
func (pc *PageController) GetQRCode(c *gin.Context) {
	logger.Debug.Println("[GetQRCode] generating QR code")

	qrBytes, err := services.GenerateQRCode(pc.ApplicationURL, qrSize, qrSize, pc.Encoder)
	if err != nil {
		logger.Error.Printf("[GetQRCode] error generating QR code: %v", err)
		c.String(http.StatusInternalServerError, "QR generation failed")
		return
	}

	c.Header("Content-Disposition", "inline; filename=\"qrcode.png\"")
	c.Data(http.StatusOK, "image/png", qrBytes)
}
