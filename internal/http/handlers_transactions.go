package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// handleListTransactions returns a plain array, or a page envelope when page
// or page_size is given.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, empty, errs := parseTransactionFilter(q)
	if errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	pg, valid := parsePagination(q)
	if !valid {
		writeDetail(w, http.StatusNotFound, detailInvalidPage)
		return
	}

	owner := ownerID(r)
	if !pg.enabled {
		if empty {
			writeJSON(w, http.StatusOK, []core.Transaction{})
			return
		}
		txs, err := s.svc.Transactions.List(r.Context(), owner, filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if txs == nil {
			txs = []core.Transaction{}
		}
		writeJSON(w, http.StatusOK, txs)
		return
	}

	count := 0
	if !empty {
		n, err := s.svc.Transactions.Count(r.Context(), owner, filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		count = n
	}
	limit, offset, pageNum, pages, ok := pg.resolve(count)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailInvalidPage)
		return
	}

	body := page[core.Transaction]{Count: count, Results: []core.Transaction{}}
	if count > 0 {
		filter.Limit, filter.Offset = limit, offset
		txs, err := s.svc.Transactions.List(r.Context(), owner, filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if txs != nil {
			body.Results = txs
		}
	}
	if pageNum < pages {
		body.Next = pageURL(r, pageNum+1)
	}
	if pageNum > 1 {
		body.Previous = pageURL(r, pageNum-1)
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if errs := decodeJSON(r, &req); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	p, errs := req.patch(true)
	if errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	tx, err := s.svc.Transactions.Create(r.Context(), ownerID(r), services.TransactionInput{
		CategoryID: *p.CategoryID,
		Amount:     *p.Amount,
		Date:       *p.Date,
		Note:       p.Note,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	tx, err := s.svc.Transactions.Get(r.Context(), ownerID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(full bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeDetail(w, http.StatusNotFound, detailNotFound)
			return
		}
		var req transactionRequest
		if errs := decodeJSON(r, &req); errs != nil {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		p, errs := req.patch(full)
		if errs != nil {
			writeJSON(w, http.StatusBadRequest, errs)
			return
		}
		tx, err := s.svc.Transactions.Update(r.Context(), ownerID(r), id, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	}
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	if err := s.svc.Transactions.Delete(r.Context(), ownerID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	start, end, errs := parseStatsRange(r.URL.Query())
	if errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}
	stats, err := s.svc.Summaries.DailyStats(r.Context(), ownerID(r), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if stats == nil {
		stats = []core.DailyStat{}
	}
	writeJSON(w, http.StatusOK, stats)
}
