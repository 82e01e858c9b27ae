package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories.List(r.Context(), ownerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	patch, errs := s.decodeCategory(r, true)
	if errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), ownerID(r), *patch.Name, *patch.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	c, err := s.svc.Categories.Get(r.Context(), ownerID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleUpdateCategory serves PUT (full) and PATCH.
func (s *Server) handleUpdateCategory(full bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeDetail(w, http.StatusNotFound, detailNotFound)
			return
		}
		patch, errs := s.decodeCategory(r, full)
		if errs != nil {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		c, err := s.svc.Categories.Update(r.Context(), ownerID(r), id, patch)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	if err := s.svc.Categories.Delete(r.Context(), ownerID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeCategory(r *http.Request, full bool) (services.CategoryPatch, fieldErrors) {
	var req categoryRequest
	if errs := decodeJSON(r, &req); errs != nil {
		return services.CategoryPatch{}, errs
	}
	if errs := s.validator.check(req); errs != nil {
		return services.CategoryPatch{}, errs
	}
	return req.patch(full)
}
