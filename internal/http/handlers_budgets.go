package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseBudgetFilter(r.URL.Query())
	if errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	budgets, err := s.svc.Budgets.List(r.Context(), ownerID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	p, errs := s.decodeBudget(r, true)
	if errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	b, err := s.svc.Budgets.Create(r.Context(), ownerID(r), core.Period{Year: *p.Year, Month: *p.Month}, *p.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	b, err := s.svc.Budgets.Get(r.Context(), ownerID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleUpdateBudget(full bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeDetail(w, http.StatusNotFound, detailNotFound)
			return
		}
		p, errs := s.decodeBudget(r, full)
		if errs != nil {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		b, err := s.svc.Budgets.Update(r.Context(), ownerID(r), id, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	if err := s.svc.Budgets.Delete(r.Context(), ownerID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeBudget(r *http.Request, full bool) (services.BudgetPatch, fieldErrors) {
	var req budgetRequest
	if errs := decodeJSON(r, &req); errs != nil {
		return services.BudgetPatch{}, errs
	}
	if errs := s.validator.check(req); errs != nil {
		return services.BudgetPatch{}, errs
	}
	return req.patch(full)
}
