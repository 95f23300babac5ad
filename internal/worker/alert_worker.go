package worker

import (
	"github.com/spec-kit/access-service/internal/service"
)

// StartAlertWorker registers the operational alert handlers.
func StartAlertWorker(alertService *service.AlertService) {
	if alertService == nil {
		return
	}
	alertService.RegisterHandlers()
}
