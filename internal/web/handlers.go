package web

import (
	"context"
	"net/http"

	"github.com/conorfennell/salita/internal/domain"
	"github.com/conorfennell/salita/internal/sentence"
)

type answerRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Category string `json:"category" validate:"required,oneof=letter particle verb"`
	Correct  *bool  `json:"correct" validate:"required"`
}

type attemptRequest struct {
	Attempt []string `json:"attempt" validate:"dive,required"`
}

type sentenceRequest struct {
	Target  []string `json:"target" validate:"required,min=1,dive,required"`
	Attempt []string `json:"attempt" validate:"dive,required"`
}

type recordResponse struct {
	Record  domain.ReviewRecord `json:"record"`
	History []domain.AnswerLog  `json:"history"`
}

type drillResponse struct {
	domain.Drill
	Pattern sentence.Pattern `json:"pattern"`
}

func (s *Server) handlePostAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if !s.decode(w, r, &req) {
			return
		}
		record, err := s.scheduler.RecordAnswer(r.Context(), req.ItemID, domain.Category(req.Category), *req.Correct)
		if err != nil {
			loggerFrom(r.Context()).Error("Failed to record answer", "item_id", req.ItemID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to record answer")
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func (s *Server) handleGetDue() http.HandlerFunc {
	return s.listRecords("due", s.scheduler.DueForReview)
}

func (s *Server) handleGetDifficult() http.HandlerFunc {
	return s.listRecords("difficult", s.scheduler.DifficultCards)
}

type recordQuery func(ctx context.Context, category domain.Category) ([]domain.ReviewRecord, error)

func (s *Server) listRecords(name string, query recordQuery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := categoryFilter(w, r)
		if !ok {
			return
		}
		records, err := query(r.Context(), category)
		if err != nil {
			loggerFrom(r.Context()).Error("Failed to list records", "list", name, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list records")
			return
		}
		if records == nil {
			records = []domain.ReviewRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func (s *Server) handleGetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := categoryFilter(w, r)
		if !ok {
			return
		}
		stats, err := s.scheduler.Stats(r.Context(), category)
		if err != nil {
			loggerFrom(r.Context()).Error("Failed to compute stats", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to compute stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) handleGetRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		record, err := s.scheduler.Record(r.Context(), id)
		if err != nil {
			loggerFrom(r.Context()).Error("Failed to load record", "item_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load record")
			return
		}
		if record == nil {
			writeError(w, http.StatusNotFound, "no record for "+id)
			return
		}
		history, err := s.scheduler.History(r.Context(), id)
		if err != nil {
			loggerFrom(r.Context()).Warn("Failed to load answer history", "item_id", id, "error", err)
		}
		if history == nil {
			history = []domain.AnswerLog{}
		}
		writeJSON(w, http.StatusOK, recordResponse{Record: *record, History: history})
	}
}

func (s *Server) handleDeleteRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.scheduler.Reset(r.Context(), id); err != nil {
			loggerFrom(r.Context()).Error("Failed to reset record", "item_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to reset record")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleGetDrills() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drills := s.catalog.DrillList()
		resp := make([]drillResponse, 0, len(drills))
		for _, d := range drills {
			resp = append(resp, drillResponse{Drill: d, Pattern: s.pattern(d)})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleCheckDrill() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drill, ok := s.findDrill(w, r)
		if !ok {
			return
		}
		var req attemptRequest
		if !s.decode(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, s.validator.Validate(req.Attempt, drill.Tokens))
	}
}

func (s *Server) handleDrillHints() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drill, ok := s.findDrill(w, r)
		if !ok {
			return
		}
		var req attemptRequest
		if !s.decode(w, r, &req) {
			return
		}
		hints := s.validator.GenerateHints(drill.Tokens, req.Attempt)
		if hints == nil {
			hints = []string{}
		}
		writeJSON(w, http.StatusOK, map[string][]string{"hints": hints})
	}
}

func (s *Server) handleValidateSentence() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sentenceRequest
		if !s.decode(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, s.validator.Validate(req.Attempt, req.Target))
	}
}

func (s *Server) findDrill(w http.ResponseWriter, r *http.Request) (domain.Drill, bool) {
	id := r.PathValue("id")
	drill, ok := s.catalog.FindDrill(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no drill matches "+id)
	}
	return drill, ok
}

func (s *Server) pattern(d domain.Drill) sentence.Pattern {
	words := make([]domain.VocabularyWord, 0, len(d.Tokens))
	for _, id := range d.Tokens {
		if word, ok := s.catalog.Vocabulary.Word(id); ok {
			words = append(words, word)
		}
	}
	return s.validator.IdentifyPattern(words)
}

// categoryFilter reads the optional category query parameter.
func categoryFilter(w http.ResponseWriter, r *http.Request) (domain.Category, bool) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		return domain.AnyCategory, true
	}
	category, err := domain.ParseCategory(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return category, true
}
