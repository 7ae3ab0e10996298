package analysis

import (
	"NutriLens/pkg/response"
	"net/http"
)

var (
	ErrInternalServerError  = response.NewError(http.StatusInternalServerError, "internal server error")
	ErrBadRequest           = response.NewError(http.StatusBadRequest, "bad request")
	ErrInvalidImage         = response.NewError(http.StatusBadRequest, "invalid image")
	ErrCatalogEntryNotFound = response.NewError(http.StatusNotFound, "catalog entry not found")
	ErrCatalogUnavailable   = response.NewError(http.StatusServiceUnavailable, "nutrition catalog is not loaded")
	ErrDetectorUnavailable  = response.NewError(http.StatusServiceUnavailable, "food detector is not configured")
	ErrDetectionFailed      = response.NewError(http.StatusBadGateway, "food detection failed")
)
