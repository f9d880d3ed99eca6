package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/claimaudit/internal/cache"
	"github.com/ppiankov/claimaudit/internal/filter"
	"github.com/ppiankov/claimaudit/internal/model"
	"github.com/ppiankov/claimaudit/internal/pipeline"
	"github.com/ppiankov/claimaudit/internal/report"
	"github.com/ppiankov/claimaudit/internal/review"
)

const maxBodyBytes = 1 << 20

// createRequest is the body of POST /api/analyses. Absent fields fall back
// to the generator configuration.
type createRequest struct {
	Claims         *int     `json:"claims"`
	Categories     []string `json:"categories"`
	Seed           int64    `json:"seed"`
	FileSizeMB     *float64 `json:"fileSizeMB"`
	SampleFileSize *bool    `json:"sampleFileSize"`
	Title          string   `json:"title"`
}

type reviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
	Reason string `json:"reason"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

type claimsResponse struct {
	Total   int                    `json:"total"`
	Matched int                    `json:"matched"`
	Claims  []model.AnnotatedClaim `json:"claims"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts, err := s.buildOptions(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rep, err := s.auditor.Run(r.Context(), opts)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidOptions) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.logger.Error("audit failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("audit failed"))
		return
	}

	entry := &cache.Entry{Report: rep, Session: review.NewSession(rep.Claims)}
	s.store.Set(rep.ID, entry, s.cfg.SessionTTL)

	s.logger.Info("analysis created",
		zap.String("report", rep.ID),
		zap.Int64("seed", rep.Seed),
		zap.Int("claims", len(rep.Claims)),
		zap.Int("stored", s.store.Len()))

	writeJSON(w, http.StatusCreated, snapshot(entry))
}

// buildOptions merges a create request with the configured defaults
func (s *Server) buildOptions(req createRequest) (pipeline.Options, error) {
	claims := s.defaults.Claims
	if req.Claims != nil {
		claims = *req.Claims
	}
	if claims < 0 {
		return pipeline.Options{}, fmt.Errorf("claims must be non-negative, got %d", claims)
	}
	if s.cfg.MaxClaims > 0 && claims > s.cfg.MaxClaims {
		return pipeline.Options{}, fmt.Errorf("claims must be at most %d, got %d", s.cfg.MaxClaims, claims)
	}

	labels := req.Categories
	if len(labels) == 0 {
		labels = s.defaults.Categories
	}
	categories, err := model.ParseCategories(labels)
	if err != nil {
		return pipeline.Options{}, err
	}

	seed := req.Seed
	if seed == 0 {
		seed = s.defaults.Seed
	}
	sample := s.defaults.SampleFileSize
	if req.SampleFileSize != nil {
		sample = *req.SampleFileSize
	}

	return pipeline.Options{
		Seed:           seed,
		Claims:         claims,
		Categories:     categories,
		FileSizeMB:     req.FileSizeMB,
		SampleFileSize: sample,
		Title:          strings.TrimSpace(req.Title),
	}, nil
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshot(entry))
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	annotated := entry.Session.Annotated()
	claims := make([]model.Claim, len(annotated))
	reviews := make(map[string]model.Review, len(annotated))
	for i, a := range annotated {
		claims[i] = a.Claim
		reviews[a.Claim.ID] = a.Review
	}

	matched := q.Apply(claims)
	out := make([]model.AnnotatedClaim, 0, len(matched))
	for _, c := range matched {
		out = append(out, model.AnnotatedClaim{Claim: c, Review: reviews[c.ID]})
	}

	writeJSON(w, http.StatusOK, claimsResponse{
		Total:   len(annotated),
		Matched: len(out),
		Claims:  out,
	})
}

func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}

	claimID := r.PathValue("claimID")
	c, ok := entry.Session.Claim(claimID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", review.ErrUnknownClaim, claimID))
		return
	}
	rv, _ := entry.Session.Review(claimID)
	writeJSON(w, http.StatusOK, model.AnnotatedClaim{Claim: c, Review: rv})
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.store.Delete(entry.Report.ID)

	s.logger.Info("analysis deleted",
		zap.String("report", entry.Report.ID),
		zap.Int("stored", s.store.Len()))
	w.WriteHeader(http.StatusNoContent)
}

// parseQuery reads the search, filter and sort parameters of the claims view
func parseQuery(r *http.Request) (filter.Query, error) {
	params := r.URL.Query()
	q := filter.Query{
		Search: strings.TrimSpace(params.Get("search")),
		SortBy: filter.SortField(strings.TrimSpace(params.Get("sort"))),
		Order:  filter.Order(strings.ToLower(strings.TrimSpace(params.Get("order")))),
	}

	if v := strings.TrimSpace(params.Get("category")); v != "" && !strings.EqualFold(v, "all") {
		c, err := model.ParseCategory(v)
		if err != nil {
			return filter.Query{}, err
		}
		q.Category = c
	}
	if v := strings.TrimSpace(params.Get("consistency")); v != "" && !strings.EqualFold(v, "all") {
		c, err := model.ParseConsistency(v)
		if err != nil {
			return filter.Query{}, err
		}
		q.Consistency = c
	}

	if err := q.Validate(); err != nil {
		return filter.Query{}, err
	}
	return q, nil
}

func (s *Server) handleReviewClaim(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	status, err := model.ParseReviewStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	claimID := r.PathValue("claimID")
	if _, err := entry.Session.Update(claimID, status, req.Notes, req.Reason); err != nil {
		switch {
		case errors.Is(err, review.ErrUnknownClaim):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, review.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	s.logger.Debug("claim reviewed",
		zap.String("report", entry.Report.ID),
		zap.String("claim", claimID),
		zap.String("status", string(status)))

	writeJSON(w, http.StatusOK, entry.Session.Summary())
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req feedbackRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entry.Session.SetFeedback(strings.TrimSpace(req.Feedback))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderReport(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.lookup(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	formatName := params.Get("format")
	if formatName == "" {
		formatName = string(report.FormatMarkdown)
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rep := snapshot(entry)
	if raw := params.Get("sections"); raw != "" {
		sections, err := report.ParseSections(strings.Split(raw, ","))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		rep.Sections = sections
	}

	w.Header().Set("Content-Type", format.ContentType())
	if err := s.renderer.Render(w, rep, format); err != nil {
		// Headers are already out; the client sees a truncated body
		s.logger.Error("render failed", zap.String("report", rep.ID), zap.Error(err))
	}
}

// lookup resolves the {id} path value, writing a 404 when it is unknown
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*cache.Entry, bool) {
	id := r.PathValue("id")
	entry, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown analysis %q", id))
		return nil, false
	}
	return entry, true
}

// snapshot copies the stored report and layers the session's current
// reviews and feedback onto it
func snapshot(entry *cache.Entry) *model.Report {
	rep := *entry.Report
	rep.Claims = entry.Session.Claims()
	rep.Reviews = entry.Session.Reviews()
	summary := entry.Session.Summary()
	rep.ReviewSummary = &summary
	rep.Feedback = entry.Session.Feedback()
	return &rep
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
