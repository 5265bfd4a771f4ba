package rest

import (
	"log/slog"
	"time"

	"github.com/davidleathers/cnp-fraud-console/internal/service/fraud"
	"github.com/davidleathers/cnp-fraud-console/internal/service/usage"
)

// Services holds all the services needed by the REST API
type Services struct {
	Fraud fraud.Service
	Usage usage.Service
}

// Handler serves the scoring screens, the usage dashboard and their JSON APIs
type Handler struct {
	*BaseHandler
	services       Services
	pages          *pageRenderer
	maxUploadBytes int64
	now            func() time.Time
}

// NewHandler creates the REST handlers; templates are parsed up front
func NewHandler(services Services, apiVersion string, maxUploadBytes int64, debugMode bool, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pages, err := newPageRenderer(logger)
	if err != nil {
		return nil, err
	}
	return &Handler{
		BaseHandler:    NewBaseHandler(apiVersion, debugMode, logger),
		services:       services,
		pages:          pages,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}, nil
}
