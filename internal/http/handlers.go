package http

import (
	"net/http"
	"strconv"

	"finance/internal/core"
	applog "finance/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	list, err := s.api.ListTransactions(r.Context())
	if err != nil {
		writeError(w, r, err, applog.OpList)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionList(list))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := parseTransactionRequest(w, r)
	if err != nil {
		writeError(w, r, err, applog.OpValidate)
		return
	}

	t, err := s.api.AddTransaction(r.Context(), in)
	if err != nil {
		writeError(w, r, err, applog.OpCreate)
		return
	}
	w.Header().Set("Location", "/api/transactions/"+strconv.FormatInt(t.ID, 10))
	writeJSON(w, http.StatusCreated, newTransactionResponse(t))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return
	}

	t, err := s.api.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(t))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.api.Summary(r.Context())
	if err != nil {
		writeError(w, r, err, applog.OpSummary)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(sum))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	period := core.PeriodType(r.PathValue("period"))
	amount, ok, err := s.api.GetGoal(r.Context(), period)
	if err != nil {
		writeError(w, r, err, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, newGoalResponse(period, amount, ok))
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	period := core.PeriodType(r.PathValue("period"))
	amount, err := parseGoalRequest(w, r)
	if err != nil {
		writeError(w, r, err, applog.OpValidate)
		return
	}

	if err := s.api.SetGoal(r.Context(), period, amount); err != nil {
		writeError(w, r, err, applog.OpSetGoal)
		return
	}
	writeJSON(w, http.StatusOK, newGoalResponse(period, amount, true))
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.api.GoalProgress(r.Context(), core.PeriodType(r.PathValue("period")))
	if err != nil {
		writeError(w, r, err, applog.OpProgress)
		return
	}
	writeJSON(w, http.StatusOK, newProgressResponse(p))
}
