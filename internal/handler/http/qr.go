package http

import (
	"net/http"

	"github.com/attendly-hq/attendance-backend-go/internal/handler/http/response"
	"github.com/attendly-hq/attendance-backend-go/internal/pkg/qrcode"
)

type QRHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
}

type qrHandlerImpl struct{}

func NewQRHandler() QRHandler {
	return &qrHandlerImpl{}
}

type qrResponse struct {
	EmployeeID string `json:"employee_id"`
	Image      string `json:"image"`
}

// Generate returns a QR image encoding an employee id, as a data URL
// the frontend can drop straight into an img tag.
func (h *qrHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "Query parameter 'employee_id' is required", nil)
		return
	}

	image, err := qrcode.EncodeEmployeeID(employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, qrResponse{
		EmployeeID: employeeID,
		Image:      image,
	})
}
