package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tabletennis-scoring/models"
	"github.com/Dosada05/tabletennis-scoring/scoring"
	"github.com/Dosada05/tabletennis-scoring/services"
)

type FormatHandler struct {
	formatService services.FormatService
}

func NewFormatHandler(fs services.FormatService) *FormatHandler {
	return &FormatHandler{
		formatService: fs,
	}
}

// GetAllFormats godoc
// @Summary List team match formats
// @Tags formats
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /formats [get]
func (h *FormatHandler) GetAllFormats(w http.ResponseWriter, r *http.Request) {
	formats, err := h.formatService.GetAllFormats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"formats": formats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetFormatByID godoc
// @Summary Roles and submatch order of one team format
// @Tags formats
// @Produce json
// @Param format path string true "Format name"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /formats/{format} [get]
func (h *FormatHandler) GetFormatByID(w http.ResponseWriter, r *http.Request) {
	name, err := getIDFromURL(r, "format")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	format, err := h.formatService.GetFormatByName(r.Context(), models.TeamFormat(name))
	if err != nil {
		if errors.Is(err, scoring.ErrUnknownTeamFormat) {
			notFoundResponse(w, r)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"format": format}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
