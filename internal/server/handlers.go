// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/safescan/internal/result"
	"github.com/pdiddy/safescan/internal/scan"
	"github.com/pdiddy/safescan/pkg/types"
)

type analyzeRequest struct {
	// UserID and SessionID are optional; without them nothing is persisted.
	UserID    string `json:"userId" validate:"omitempty,excludesall=/"`
	SessionID string `json:"sessionId" validate:"omitempty,excludesall=/"`

	// Exactly one of RawText and OCR is used; OCR wins when both are set.
	RawText string             `json:"rawText"`
	OCR     *types.OCRResponse `json:"ocr"`

	Profiles      []types.UserProfile `json:"profiles" validate:"required,min=1,dive"`
	InferredRisks []string            `json:"inferredRisks"`

	// ItemName identifies the item for stored user overrides.
	ItemName string `json:"itemName"`
}

type analyzeResponse struct {
	types.Output
	Analysis types.AnalysisResult   `json:"analysis"`
	Session  *types.SessionCounters `json:"session,omitempty"`
	AlertID  string                 `json:"alertId,omitempty"`
}

type attemptRequest struct {
	UserID       string `json:"userId" validate:"required,excludesall=/"`
	SessionID    string `json:"sessionId" validate:"required,excludesall=/"`
	ManualReview bool   `json:"manualReview"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}

	start := time.Now()
	var out types.Output
	input := "text"
	if req.OCR != nil {
		input = "ocr"
		out = scan.AnalyzeOCR(s.deps.Engine, *req.OCR, req.Profiles, req.InferredRisks, s.deps.Options)
	} else {
		out = scan.Analyze(s.deps.Engine, types.Input{
			RawText:       req.RawText,
			Profiles:      req.Profiles,
			InferredRisks: req.InferredRisks,
		}, s.deps.Options)
	}
	s.deps.Metrics.RecordAnalysis(input, out, time.Since(start))

	resp := analyzeResponse{Output: out, Analysis: result.FromOutput(out)}
	ctx := r.Context()
	log := s.logger(ctx)

	if req.UserID != "" && req.ItemName != "" {
		resp.Analysis = s.applyOverride(ctx, log, req.UserID, req.ItemName, resp.Analysis)
	}
	if req.UserID != "" && req.SessionID != "" {
		counters, err := s.deps.Store.RecordAttempt(ctx, req.UserID, req.SessionID, out.NeedsManualReview())
		if err != nil {
			log.Error("recording attempt", zap.String("session_id", req.SessionID), zap.Error(err))
		} else {
			resp.Session = &counters
		}
	}
	if req.UserID != "" && result.ShouldCreateAdminAlert(resp.Analysis) {
		resp.AlertID = s.raiseAlert(ctx, log, req.UserID, req.SessionID, resp.Analysis)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) applyOverride(ctx context.Context, log *zap.Logger, userID, itemName string, r types.AnalysisResult) types.AnalysisResult {
	fp := result.ComputeItemFingerprint(&itemName, nil)
	if fp == nil {
		return r
	}
	override, err := s.deps.Store.GetOverride(ctx, userID, *fp)
	if errors.Is(err, types.ErrNotFound) {
		return r
	}
	if err != nil {
		log.Error("loading override", zap.String("fingerprint", *fp), zap.Error(err))
		return r
	}
	return result.ApplyUserOverrideToResult(r, override)
}

// raiseAlert stores and publishes an alert. Failures are logged; the alert
// ID is returned only when the alert was stored.
func (s *Server) raiseAlert(ctx context.Context, log *zap.Logger, userID, sessionID string, r types.AnalysisResult) string {
	alert := result.BuildAdminAlert(sessionID, r)
	alert.ID = uuid.NewString()
	alert.CreatedAt = s.deps.Now().UTC()

	if err := s.deps.Store.PutAlert(ctx, userID, alert); err != nil {
		log.Error("storing alert", zap.String("alert_id", alert.ID), zap.Error(err))
		s.deps.Metrics.RecordAlert("store_failed")
		return ""
	}
	if err := s.deps.Notifier.PublishAlert(ctx, alert); err != nil {
		log.Warn("publishing alert", zap.String("alert_id", alert.ID), zap.Error(err))
		s.deps.Metrics.RecordAlert("publish_failed")
	} else {
		s.deps.Metrics.RecordAlert("published")
	}
	return alert.ID
}

func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if !s.decode(w, r, &req) {
		return
	}
	counters, err := s.deps.Store.RecordAttempt(r.Context(), req.UserID, req.SessionID, req.ManualReview)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counters)
}
