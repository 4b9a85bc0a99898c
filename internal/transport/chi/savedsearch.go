package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/kwsearch/internal/access"
	domsaved "github.com/kailas-cloud/kwsearch/internal/domain/savedsearch"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/request"
	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
	saveduc "github.com/kailas-cloud/kwsearch/internal/usecase/savedsearch"
)

// ListSavedSearches handles GET /api/v1/saved-searches. It accepts the
// search options; without q every saved search of the caller is listed.
func (s *Server) ListSavedSearches(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, permission{access.ActionRead, domsaved.Resource}) {
		return
	}
	owner := PrincipalFromContext(r.Context()).Name

	page, err := s.saved.List(r.Context(), owner, request.FromValues(r.URL.Query()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSearch(w, r, page, savedSearchToJSON)
}

// CreateSavedSearch handles POST /api/v1/saved-searches.
func (s *Server) CreateSavedSearch(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, permission{access.ActionCreate, domsaved.Resource}) {
		return
	}

	var req CreateSavedSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	saved, err := s.saved.Create(r.Context(), PrincipalFromContext(r.Context()).Name, saveduc.CreateParams{
		Name:    req.Name,
		Query:   req.Query,
		OrderBy: req.OrderBy,
		PerPage: req.PerPage,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, savedSearchToJSON(saved))
}

// GetSavedSearch handles GET /api/v1/saved-searches/{id}.
func (s *Server) GetSavedSearch(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, permission{access.ActionRead, domsaved.Resource}) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	saved, err := s.saved.Get(r.Context(), PrincipalFromContext(r.Context()).Name, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, savedSearchToJSON(saved))
}

// ReorderSavedSearches handles PUT /api/v1/saved-searches/order.
func (s *Server) ReorderSavedSearches(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, permission{access.ActionUpdate, domsaved.Resource}) {
		return
	}

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ids, err := s.saved.Reorder(r.Context(), PrincipalFromContext(r.Context()).Name, req.IDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReorderResponse{IDs: ids})
}

// DeleteSavedSearch handles DELETE /api/v1/saved-searches/{id}.
func (s *Server) DeleteSavedSearch(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, permission{access.ActionDelete, domsaved.Resource}) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.saved.Delete(r.Context(), PrincipalFromContext(r.Context()).Name, id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunSavedSearch handles GET /api/v1/saved-searches/{id}/results. The
// optional page parameter selects the result page.
func (s *Server) RunSavedSearch(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r,
		permission{access.ActionRead, domsaved.Resource},
		permission{access.ActionSearch, domuser.Resource},
	) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var page *string
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter page: "+err.Error())
		return
	}
	var pageParam any
	if page != nil {
		pageParam = *page
	}

	out, err := s.saved.Run(r.Context(), PrincipalFromContext(r.Context()).Name, id, pageParam)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSearch(w, r, out, userToJSON)
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath})
	if err != nil || id == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter id")
		return "", false
	}
	return id, true
}
