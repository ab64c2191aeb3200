package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oddlyprompt/ExitorDie/internal/content"
	"github.com/oddlyprompt/ExitorDie/internal/score"
	"github.com/oddlyprompt/ExitorDie/internal/store"
)

// maxPackBytes bounds admin pack uploads.
const maxPackBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		ServerVersion: ServerVersion,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Uptime:        time.Since(s.startTime).String(),
	})
}

// handleGetContent returns the active content pack, seeding the built-in
// default on first access.
func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	pack, err := score.ActivePack(r.Context(), s.db)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pack)
}

// handleAdminContent installs a new active content pack. The upload is
// schema-validated before it can touch the store.
func (s *Server) handleAdminContent(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-API-Key") != s.cfg.AdminAPIKey {
		s.writeError(w, r, http.StatusUnauthorized, ErrTypeUnauthorized, "invalid API key", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPackBytes))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeInvalidJSON, "failed to read request body", nil)
		return
	}

	pack, err := content.DecodeJSON(body)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeInvalidPack, err.Error(), nil)
		return
	}

	pack.Active = true
	pack.CreatedAt = time.Now().UTC()
	if err := s.db.ReplaceContentPack(r.Context(), pack); err != nil {
		s.writeInternalError(w, r, err)
		return
	}

	s.logger.Printf("content_pack_updated version=%s", pack.Version)
	s.writeJSON(w, http.StatusOK, AdminContentResponse{Status: "success", Version: pack.Version})
}

// handleDaily returns today's deterministic seed and its UTC window.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	start, end := score.DailyWindow(now)

	s.writeJSON(w, http.StatusOK, DailyResponse{
		Seed:  score.DailySeed(s.cfg.DailySecret, now),
		Start: start.Format(time.RFC3339),
		End:   end.Format(time.RFC3339),
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := store.ScoresQuery{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
		Daily:  r.URL.Query().Get("daily") == "true",
		Day:    r.URL.Query().Get("day"),
	}
	if q.Daily && q.Day == "" {
		q.Day = score.DayBucket(time.Now())
	}

	page, err := s.db.ListScores(r.Context(), q)
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

// handleSubmitScore runs a submission through the validation pipeline.
// Rejections come back as 400 with the rejection kind; the response body of
// an accepted submission carries only server-simulated numbers.
func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var sub score.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeInvalidJSON, "invalid request body", nil)
		return
	}

	result, err := s.pipeline.ValidateAndScore(r.Context(), sub)
	if err != nil {
		s.writeSubmissionError(w, r, err)
		return
	}

	s.logger.Printf(
		"score_accepted score=%d depth=%d artifacts=%d placement=%d daily=%t",
		result.Score, result.Depth, result.ArtifactCount, result.Placement, sub.Daily,
	)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	item, err := s.db.FindItemByHash(r.Context(), hash)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, "item not found", nil)
		return
	}
	if err != nil {
		s.writeInternalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
