package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/service"
	apperrors "github.com/KEN19920421/30sec-challenge-sub003/pkg/errors"
)

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	switch {
	case apperrors.IsNotFound(err):
		appErr = err.(*apperrors.AppError)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": appErr.Message, "code": string(appErr.Kind)})
	case apperrors.IsForbidden(err):
		appErr = err.(*apperrors.AppError)
		writeJSON(w, http.StatusForbidden, map[string]string{"error": appErr.Message, "code": string(appErr.Kind)})
	case apperrors.IsValidationFailed(err):
		appErr = err.(*apperrors.AppError)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": appErr.Message, "code": string(appErr.Kind)})
	case apperrors.IsTransient(err):
		writeError(w, http.StatusServiceUnavailable, "temporary failure, retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// userID reads the authenticated user id injected by the auth middleware in
// front of this service.
func userID(r *http.Request) (uint64, bool) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

type ChallengeHandler struct {
	challengeSvc *service.ChallengeService
}

func NewChallengeHandler(challengeSvc *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeSvc: challengeSvc}
}

func (h *ChallengeHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	challenges, err := h.challengeSvc.GetCurrent(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"challenges": challenges})
}

func (h *ChallengeHandler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	challenges, err := h.challengeSvc.GetUpcoming(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"challenges": challenges})
}

func (h *ChallengeHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	challenges, err := h.challengeSvc.GetHistory(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"challenges": challenges})
}

type LeaderboardHandler struct {
	leaderboardSvc *service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardSvc *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardSvc: leaderboardSvc}
}

// GetTopN handles /api/challenges/{id}/leaderboard.
func (h *LeaderboardHandler) GetTopN(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) < 4 {
		writeError(w, http.StatusBadRequest, "invalid path format, expected /api/challenges/{id}/leaderboard")
		return
	}

	challengeID, err := strconv.ParseUint(pathParts[2], 10, 64)
	if err != nil || challengeID == 0 {
		writeError(w, http.StatusBadRequest, "invalid challenge id")
		return
	}

	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 50
	}

	entries, err := h.leaderboardSvc.TopN(r.Context(), challengeID, limit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"challenge_id": challengeID,
		"entries":      entries,
	})
}

type QueueHandler struct {
	queueSvc *service.VoteQueueService
}

func NewQueueHandler(queueSvc *service.VoteQueueService) *QueueHandler {
	return &QueueHandler{queueSvc: queueSvc}
}

func (h *QueueHandler) GetNextBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	challengeID, err := strconv.ParseUint(r.URL.Query().Get("challenge_id"), 10, 64)
	if err != nil || challengeID == 0 {
		writeError(w, http.StatusBadRequest, "challenge_id is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	batch, err := h.queueSvc.NextBatch(r.Context(), uid, challengeID, limit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"challenge_id": challengeID,
		"batch":        batch,
	})
}

type VoteHandler struct {
	voteSvc   *service.VoteService
	budgetSvc *service.BudgetService
}

func NewVoteHandler(voteSvc *service.VoteService, budgetSvc *service.BudgetService) *VoteHandler {
	return &VoteHandler{voteSvc: voteSvc, budgetSvc: budgetSvc}
}

type castVoteRequest struct {
	SubmissionID uint64 `json:"submission_id"`
	Value        int    `json:"value"`
	IsSuperVote  bool   `json:"is_super_vote"`
	Source       string `json:"source"`
}

func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubmissionID == 0 {
		writeError(w, http.StatusBadRequest, "submission_id is required")
		return
	}

	source := models.VoteSource(req.Source)
	if source == "" {
		source = models.VoteSourceQueue
	}

	vote, err := h.voteSvc.CastVote(r.Context(), uid, req.SubmissionID, req.Value, req.IsSuperVote, source)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vote)
}

func (h *VoteHandler) GetVoteStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	submissionID, err := strconv.ParseUint(r.URL.Query().Get("submission_id"), 10, 64)
	if err != nil || submissionID == 0 {
		writeError(w, http.StatusBadRequest, "submission_id is required")
		return
	}

	stats, err := h.voteSvc.GetVoteStats(r.Context(), submissionID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *VoteHandler) GetSuperVoteBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	remaining, err := h.budgetSvc.RemainingSuperVotes(r.Context(), uid)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":   uid,
		"remaining": remaining,
	})
}

// AdminHandler exposes manual maintenance triggers for operators.
type AdminHandler struct {
	scoreSvc *service.ScoreService
	tick     func()
}

func NewAdminHandler(scoreSvc *service.ScoreService, tick func()) *AdminHandler {
	return &AdminHandler{scoreSvc: scoreSvc, tick: tick}
}

// TriggerTick runs one lifecycle pass immediately; the transition locks still
// apply, so this is safe alongside the cron tick and other replicas.
func (h *AdminHandler) TriggerTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.tick()
	writeJSON(w, http.StatusOK, map[string]string{"status": "tick completed"})
}

// RecalculateChallenge rebuilds scores and the leaderboard for one challenge.
func (h *AdminHandler) RecalculateChallenge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	challengeID, err := strconv.ParseUint(r.URL.Query().Get("challenge_id"), 10, 64)
	if err != nil || challengeID == 0 {
		writeError(w, http.StatusBadRequest, "challenge_id is required")
		return
	}

	if err := h.scoreSvc.RecalculateChallenge(r.Context(), challengeID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recalculated"})
}
