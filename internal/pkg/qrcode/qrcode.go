package qrcode

import (
	"encoding/base64"
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

const pngSize = 256

// EncodeEmployeeID renders the employee id as a QR code and returns it
// as a base64 PNG data URL, ready to drop into an <img> tag. The badge
// scanner decodes it back to the same id and feeds it to the check
// endpoint.
func EncodeEmployeeID(employeeID string) (string, error) {
	png, err := qr.Encode(employeeID, qr.Medium, pngSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
