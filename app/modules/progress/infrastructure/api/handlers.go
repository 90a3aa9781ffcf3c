package progressapi

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	progressservice "github.com/Black-And-White-Club/progress-engine/app/modules/progress/application"
	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	"github.com/Black-And-White-Club/progress-engine/app/observability/attr"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProgressHandler serves the progress engine over HTTP.
type ProgressHandler struct {
	service progressservice.Service
	logger  *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(service progressservice.Service, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{service: service, logger: logger}
}

func (h *ProgressHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, progressservice.ErrPlayerNotFound) {
		notFound(w, err)
		return
	}
	h.logger.ErrorContext(r.Context(), "Progress request failed",
		attr.ExtractCorrelationID(r.Context()),
		attr.String("path", r.URL.Path),
		attr.Error(err),
	)
	internalError(w, err)
}

// player resolves the {username} path parameter, writing the error response on failure.
func (h *ProgressHandler) player(w http.ResponseWriter, r *http.Request) (progressdomain.Player, bool) {
	player, err := h.service.FindPlayer(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.fail(w, r, err)
		return progressdomain.Player{}, false
	}
	return player, true
}

func parseID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid %s %q", param, raw)
	}
	return id, nil
}

func parseGameIDs(raw string) ([]progressdomain.GameID, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]progressdomain.GameID, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid game id %q", p)
		}
		ids = append(ids, progressdomain.GameID(id))
	}
	return ids, nil
}

// GetBeaten reports whether the player has beaten the game.
func (h *ProgressHandler) GetBeaten(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseID(r, "gameID")
	if err != nil {
		badRequest(w, err)
		return
	}
	player, ok := h.player(w, r)
	if !ok {
		return
	}

	status, err := h.service.EvaluateBeaten(r.Context(), progressdomain.GameID(gameID), player.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	success(w, status)
}

// GetRank returns the player's rank in the game.
func (h *ProgressHandler) GetRank(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseID(r, "gameID")
	if err != nil {
		badRequest(w, err)
		return
	}
	player, ok := h.player(w, r)
	if !ok {
		return
	}

	rank, err := h.service.GetGameRank(r.Context(), progressdomain.GameID(gameID), player)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	success(w, rank)
}

// GetTopAchievers returns the game's high scores and latest masters.
func (h *ProgressHandler) GetTopAchievers(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseID(r, "gameID")
	if err != nil {
		badRequest(w, err)
		return
	}

	top, err := h.service.GetTopAchievers(r.Context(), progressdomain.GameID(gameID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	success(w, top)
}

// ExpireTopAchievers purges the game's cached top achievers.
func (h *ProgressHandler) ExpireTopAchievers(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseID(r, "gameID")
	if err != nil {
		badRequest(w, err)
		return
	}

	if err := h.service.ExpireTopAchievers(r.Context(), progressdomain.GameID(gameID)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRecentPlayers lists players recently seen in the game. ?limit defaults to 10 and
// 0 returns everyone.
func (h *ProgressHandler) GetRecentPlayers(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseID(r, "gameID")
	if err != nil {
		badRequest(w, err)
		return
	}
	limit := progressdomain.RecentPlayersLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(w, fmt.Errorf("invalid limit %q", raw))
			return
		}
	}

	players, err := h.service.GetGameRecentPlayers(r.Context(), progressdomain.GameID(gameID), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if players == nil {
		players = []progressdomain.RecentPlayer{}
	}
	success(w, players)
}

// GetProgress aggregates the player's progress over ?games=1,2. ?recent defaults to off.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	gameIDs, err := parseGameIDs(query.Get("games"))
	if err != nil {
		badRequest(w, err)
		return
	}

	opts := progressdomain.ProgressOptions{RecentAchievements: progressdomain.RecentFeedOff}
	if raw := query.Get("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < progressdomain.RecentFeedOff {
			badRequest(w, fmt.Errorf("invalid recent %q", raw))
			return
		}
		opts.RecentAchievements = n
	}
	if raw := query.Get("game_info"); raw != "" {
		withInfo, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(w, fmt.Errorf("invalid game_info %q", raw))
			return
		}
		opts.WithGameInfo = withInfo
	}

	player, ok := h.player(w, r)
	if !ok {
		return
	}

	progress, err := h.service.GetUserProgress(r.Context(), player, gameIDs, opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	success(w, progress)
}

// GetCompletedGames lists the player's completion per game. ?view=light returns the
// lightweight list, merged from ?cached= when given.
func (h *ProgressHandler) GetCompletedGames(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	query := r.URL.Query()

	var (
		games []progressdomain.CompletedGame
		err   error
	)
	switch query.Get("view") {
	case "", "full":
		games, err = h.service.GetCompletedGames(r.Context(), username)
	case "light":
		games, err = h.service.GetLightweightCompletedGames(r.Context(), username, query.Get("cached"))
	default:
		badRequest(w, fmt.Errorf("invalid view %q", query.Get("view")))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if games == nil {
		games = []progressdomain.CompletedGame{}
	}
	success(w, games)
}

// GetCompletedGamesCacheValue returns the compact encoding of the player's completed games.
func (h *ProgressHandler) GetCompletedGamesCacheValue(w http.ResponseWriter, r *http.Request) {
	value, err := h.service.PrepareCompletedGamesCacheValue(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(value))
}

// ExportCompletedGames downloads the completed-games workbook.
func (h *ProgressHandler) ExportCompletedGames(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var buf bytes.Buffer
	if err := h.service.ExportCompletedGames(r.Context(), username, &buf); err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-completed-games.xlsx"`, username))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GetPlayedGames lists the games the player has unlocked anything in.
func (h *ProgressHandler) GetPlayedGames(w http.ResponseWriter, r *http.Request) {
	player, ok := h.player(w, r)
	if !ok {
		return
	}

	games, err := h.service.GetPlayedGames(r.Context(), player)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if games == nil {
		games = []progressdomain.PlayedGame{}
	}
	success(w, games)
}

// GetUnlocks returns the player's earn dates per official achievement of the game.
func (h *ProgressHandler) GetUnlocks(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseID(r, "gameID")
	if err != nil {
		badRequest(w, err)
		return
	}
	player, ok := h.player(w, r)
	if !ok {
		return
	}

	unlocks, err := h.service.GetUnlocksForGame(r.Context(), player, progressdomain.GameID(gameID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	success(w, unlocks)
}

// GetSummary recomputes the player's summary of the game and compares it with the stored one.
func (h *ProgressHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseID(r, "gameID")
	if err != nil {
		badRequest(w, err)
		return
	}
	player, ok := h.player(w, r)
	if !ok {
		return
	}

	check, err := h.service.RecomputePlayerGame(r.Context(), player, progressdomain.GameID(gameID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	success(w, check)
}

// GetConsoleProgress lists every game of the console with the player's counts.
func (h *ProgressHandler) GetConsoleProgress(w http.ResponseWriter, r *http.Request) {
	consoleID, err := parseID(r, "consoleID")
	if err != nil {
		badRequest(w, err)
		return
	}
	player, ok := h.player(w, r)
	if !ok {
		return
	}

	games, err := h.service.GetConsoleProgress(r.Context(), player, progressdomain.SystemID(consoleID))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if games == nil {
		games = []progressdomain.ConsoleGameProgress{}
	}
	success(w, games)
}
