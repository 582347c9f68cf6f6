package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/tabletennis-scoring/models"
	"github.com/Dosada05/tabletennis-scoring/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: ms,
	}
}

type gameScoreRequest struct {
	Side1Score int `json:"side1_score"`
	Side2Score int `json:"side2_score"`
}

// CreateMatch godoc
// @Summary Create a singles or doubles match
// @Tags matches
// @Accept json
// @Produce json
// @Param input body services.CreateMatchInput true "Match setup"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /matches [post]
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMatch godoc
// @Summary Get a match with its full scoresheet
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /matches/{matchID} [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartMatch godoc
// @Summary Put a scheduled match in play
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /matches/{matchID}/start [post]
func (h *MatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	h.simpleMutation(w, r, h.matchService.StartMatch)
}

// ScorePoint godoc
// @Summary Award a point to a side
// @Description The side is given directly or through one of its players. Shots of the rally are optional.
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param input body services.ScorePointInput true "Point"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string "Match finished or stale version"
// @Security BearerAuth
// @Router /matches/{matchID}/points [post]
func (h *MatchHandler) ScorePoint(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ScorePointInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.matchService.ScorePoint(r.Context(), userID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": res.Match, "progress": res.Progress}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RetractPoint godoc
// @Summary Take back the last point a side won
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param input body services.SideSelector true "Side"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/points/undo [post]
func (h *MatchHandler) RetractPoint(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SideSelector
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.RetractPoint(r.Context(), userID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetGameScore godoc
// @Summary Correct the score of one game
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Param gameNumber path int true "Game number"
// @Param input body gameScoreRequest true "Scores"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/games/{gameNumber}/score [post]
func (h *MatchHandler) SetGameScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	gameNumber, err := getIntFromURL(r, "gameNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input gameScoreRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	res, err := h.matchService.SetGameScore(r.Context(), userID, matchID, gameNumber, input.Side1Score, input.Side2Score)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": res.Match, "progress": res.Progress}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetGame godoc
// @Summary Reset one game to 0-0
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID"
// @Param gameNumber path int true "Game number"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/games/{gameNumber}/reset [post]
func (h *MatchHandler) ResetGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	gameNumber, err := getIntFromURL(r, "gameNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.ResetGame(r.Context(), userID, matchID, gameNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetMatch godoc
// @Summary Reset the whole match back to scheduled
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/reset [post]
func (h *MatchHandler) ResetMatch(w http.ResponseWriter, r *http.Request) {
	h.simpleMutation(w, r, h.matchService.ResetMatch)
}

// CancelMatch godoc
// @Summary Cancel a match that has not finished
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/cancel [post]
func (h *MatchHandler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	h.simpleMutation(w, r, h.matchService.CancelMatch)
}

// GetServer godoc
// @Summary Who serves the next rally
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Match not in play"
// @Security BearerAuth
// @Router /matches/{matchID}/server [get]
func (h *MatchHandler) GetServer(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	info, err := h.matchService.ServerFor(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"server": info}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type matchMutation func(ctx context.Context, userID int, id string) (*models.Match, error)

func (h *MatchHandler) simpleMutation(w http.ResponseWriter, r *http.Request, op matchMutation) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := op(r.Context(), userID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
