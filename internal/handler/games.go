package handler

import (
	"net/http"
	"strconv"

	"gameshelf-sync-api/internal/model"
	"gameshelf-sync-api/internal/repository"
	"gameshelf-sync-api/pkg/apierror"
	"gameshelf-sync-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// GamesHandler handles the read-only games endpoints.
type GamesHandler struct {
	games repository.GameRepository
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(games repository.GameRepository) *GamesHandler {
	return &GamesHandler{games: games}
}

// List handles GET /api/v1/games
func (h *GamesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	games, err := h.games.ListGames(r.Context(), page, limit)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to list games"))
		return
	}

	total, err := h.games.CountGames(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to count games"))
		return
	}

	if games == nil {
		games = []model.GameSummary{}
	}
	response.JSONWithMeta(w, http.StatusOK, games, page, limit, total)
}

// Get handles GET /api/v1/games/{gameId}
func (h *GamesHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	if gameID == "" {
		response.Error(w, apierror.BadRequest("gameId is required"))
		return
	}

	game, err := h.games.GetGameByGameID(r.Context(), gameID)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to load game"))
		return
	}
	if game == nil {
		response.Error(w, apierror.NotFound("game not found"))
		return
	}

	response.OK(w, game)
}
