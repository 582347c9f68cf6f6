package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/tabletennis-scoring/services"
)

type TeamMatchHandler struct {
	teamMatchService services.TeamMatchService
}

func NewTeamMatchHandler(ts services.TeamMatchService) *TeamMatchHandler {
	return &TeamMatchHandler{
		teamMatchService: ts,
	}
}

// CreateTeamMatch godoc
// @Summary Create a team match
// @Tags team-matches
// @Accept json
// @Produce json
// @Param input body services.CreateTeamMatchInput true "Team match setup"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]interface{} "Invalid line-up"
// @Security BearerAuth
// @Router /team-matches [post]
func (h *TeamMatchHandler) CreateTeamMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input services.CreateTeamMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tm, err := h.teamMatchService.CreateTeamMatch(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team_match": tm}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTeamMatch godoc
// @Summary Get a team match with its submatches
// @Tags team-matches
// @Produce json
// @Param teamMatchID path string true "Team match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /team-matches/{teamMatchID} [get]
func (h *TeamMatchHandler) GetTeamMatch(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamMatchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tm, err := h.teamMatchService.GetTeamMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team_match": tm}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetLineup godoc
// @Summary Assign players to roles for both teams
// @Tags team-matches
// @Accept json
// @Produce json
// @Param teamMatchID path string true "Team match ID"
// @Param input body services.LineupInput true "Role assignments"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Submatches already generated"
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /team-matches/{teamMatchID}/lineup [put]
func (h *TeamMatchHandler) SetLineup(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "teamMatchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.LineupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tm, err := h.teamMatchService.SetLineup(r.Context(), userID, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team_match": tm}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateSubMatches godoc
// @Summary Build the submatches from the line-up
// @Tags team-matches
// @Produce json
// @Param teamMatchID path string true "Team match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{} "Missing role assignment"
// @Security BearerAuth
// @Router /team-matches/{teamMatchID}/submatches [post]
func (h *TeamMatchHandler) GenerateSubMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "teamMatchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tm, err := h.teamMatchService.GenerateSubMatches(r.Context(), userID, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team_match": tm}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ScoreSubMatchPoint godoc
// @Summary Award a point in one submatch
// @Tags team-matches
// @Accept json
// @Produce json
// @Param teamMatchID path string true "Team match ID"
// @Param index path int true "Submatch index (0-based)"
// @Param input body services.ScorePointInput true "Point"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /team-matches/{teamMatchID}/submatches/{index}/points [post]
func (h *TeamMatchHandler) ScoreSubMatchPoint(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, index, err := subMatchParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ScorePointInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.teamMatchService.ScoreSubMatchPoint(r.Context(), userID, id, index, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team_match": res.TeamMatch, "progress": res.Progress}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordSubMatchResult godoc
// @Summary Record the winner of a submatch
// @Description Closes an unplayed submatch (walkover) or confirms a scored one.
// @Tags team-matches
// @Accept json
// @Produce json
// @Param teamMatchID path string true "Team match ID"
// @Param index path int true "Submatch index (0-based)"
// @Param input body services.SubMatchResultInput true "Winner side"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /team-matches/{teamMatchID}/submatches/{index}/result [post]
func (h *TeamMatchHandler) RecordSubMatchResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, index, err := subMatchParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SubMatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tm, err := h.teamMatchService.RecordSubMatchResult(r.Context(), userID, id, index, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team_match": tm}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetSubMatch godoc
// @Summary Reset a submatch
// @Tags team-matches
// @Produce json
// @Param teamMatchID path string true "Team match ID"
// @Param index path int true "Submatch index (0-based)"
// @Param full query bool false "Reset the whole submatch instead of its current game"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /team-matches/{teamMatchID}/submatches/{index}/reset [post]
func (h *TeamMatchHandler) ResetSubMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, index, err := subMatchParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	full := false
	if fullStr := r.URL.Query().Get("full"); fullStr != "" {
		full, err = strconv.ParseBool(fullStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid full query parameter"))
			return
		}
	}

	tm, err := h.teamMatchService.ResetSubMatch(r.Context(), userID, id, index, full)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team_match": tm}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelTeamMatch godoc
// @Summary Cancel a team match that has not finished
// @Tags team-matches
// @Produce json
// @Param teamMatchID path string true "Team match ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /team-matches/{teamMatchID}/cancel [post]
func (h *TeamMatchHandler) CancelTeamMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := getIDFromURL(r, "teamMatchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tm, err := h.teamMatchService.CancelTeamMatch(r.Context(), userID, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team_match": tm}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func subMatchParams(r *http.Request) (string, int, error) {
	id, err := getIDFromURL(r, "teamMatchID")
	if err != nil {
		return "", 0, err
	}
	index, err := getIntFromURL(r, "index")
	if err != nil {
		return "", 0, err
	}
	return id, index, nil
}
