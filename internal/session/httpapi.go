package session

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/choeurtis18/MortPion/internal/lobby"
	"github.com/choeurtis18/MortPion/internal/room"
)

// HTTPHandler exposes the lobby listing and single-room snapshot reads
// outside the WebSocket protocol, grounded on the teacher's
// apps/server/internal/ledger HTTPHandler (RegisterRoutes(mux) plumbing a
// plain http.ServeMux). These endpoints never mutate a Room: both go
// through Room.Summary()/a read-only snapshot, never the mailbox.
type HTTPHandler struct {
	lobby *lobby.Lobby
}

// NewHTTPHandler builds the HTTP surface for a lobby.
func NewHTTPHandler(lby *lobby.Lobby) *HTTPHandler {
	return &HTTPHandler{lobby: lby}
}

// RegisterRoutes wires the handler's endpoints onto mux.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/rooms", h.handleListRooms)
	mux.HandleFunc("/rooms/", h.handleGetRoom)
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type roomSummaryResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PlayerCount    int    `json:"playerCount"`
	Capacity       int    `json:"capacity"`
	IsPrivate      bool   `json:"isPrivate"`
	Status         string `json:"status"`
	CreatedAt      int64  `json:"createdAt"`
	ExpiresAt      int64  `json:"expiresAt"`
	LastActivityAt int64  `json:"lastActivityAt"`
}

func toSummaryResponse(s room.Summary) roomSummaryResponse {
	return roomSummaryResponse{
		ID:             s.ID,
		Name:           s.Name,
		PlayerCount:    s.PlayerCount,
		Capacity:       s.Capacity,
		IsPrivate:      s.IsPrivate,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		ExpiresAt:      s.ExpiresAt,
		LastActivityAt: s.LastActivityAt,
	}
}

// handleListRooms implements spec §4.7 list(filter, sort, page) over HTTP:
// GET /rooms?q=&private=&status=&sort=&dir=&offset=&limit=
func (h *HTTPHandler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()

	filter := lobby.Filter{Query: strings.TrimSpace(q.Get("q"))}
	if status := q.Get("status"); status == "joinable" {
		filter.OnlyJoinable = true
	}
	if private := q.Get("private"); private != "" {
		v := private == "true" || private == "1"
		filter.PrivateOnly = &v
	}

	sortField := lobby.SortCreatedAt
	switch q.Get("sort") {
	case "name":
		sortField = lobby.SortName
	case "activity":
		sortField = lobby.SortActivity
	}
	sortDir := lobby.Asc
	if q.Get("dir") == "desc" {
		sortDir = lobby.Desc
	}

	page := lobby.Page{
		Offset: parseNonNegativeInt(q.Get("offset"), 0),
		Limit:  parseNonNegativeInt(q.Get("limit"), 20),
	}

	result := h.lobby.List(filter, lobby.Sort{Field: sortField, Dir: sortDir}, page)
	items := make([]roomSummaryResponse, len(result.Items))
	for i, s := range result.Items {
		items[i] = toSummaryResponse(s)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":   items,
		"total":   result.Total,
		"hasMore": result.HasMore,
	})
}

// handleGetRoom implements GET /rooms/{id}: a single room's public summary,
// used by clients deciding whether a direct room link is still joinable.
func (h *HTTPHandler) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	roomID := strings.TrimPrefix(r.URL.Path, "/rooms/")
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	rm := h.lobby.Get(roomID)
	if rm == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(rm.Summary()))
}

func parseNonNegativeInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
