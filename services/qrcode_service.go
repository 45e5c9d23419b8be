// services/qrcode_service.go
package services

import (
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"
)

// RegisterPath is where the QR code poster points.
const RegisterPath = "/register"

// QRCodeEncoder renders content as a PNG; qrcode.Encode in production.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// RegistrationURL joins the public base URL and the registration path.
func RegistrationURL(appURL string) string {
	return strings.TrimRight(appURL, "/") + RegisterPath
}

// GenerateQRCode renders the registration link as a square PNG. QR codes are
// square, so the smaller dimension wins.
func GenerateQRCode(appURL string, width, height int, encode QRCodeEncoder) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("invalid dimensions: width and height must be positive")
	}
	if encode == nil {
		encode = qrcode.Encode
	}
	size := width
	if height < size {
		size = height
	}

	png, err := encode(RegistrationURL(appURL), qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
