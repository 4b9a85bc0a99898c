package chi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/kwsearch/internal/access"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/request"
	"github.com/kailas-cloud/kwsearch/internal/domain/search/result"
	domuser "github.com/kailas-cloud/kwsearch/internal/domain/user"
)

// SearchUsers handles GET /api/v1/users/search.
func (s *Server) SearchUsers(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, permission{access.ActionSearch, domuser.Resource}) {
		return
	}
	s.searchUsers(w, r, request.FromValues(r.URL.Query()))
}

// SearchUsersJSON handles POST /api/v1/users/search. The body carries the
// same options as the query string; order_by may also be an array or object.
func (s *Server) SearchUsersJSON(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r, permission{access.ActionSearch, domuser.Resource}) {
		return
	}

	var body map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.searchUsers(w, r, request.FromMap(body))
}

func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request, p request.Params) {
	page, err := s.users.Search(r.Context(), p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeSearch(w, r, page, userToJSON)
}

// writeSearch writes the envelope; a fatal search error answers 400.
func writeSearch[T, J any](w http.ResponseWriter, r *http.Request, page result.Page[T], conv func(T) J) {
	codes := make([]string, len(page.Errors))
	for i, c := range page.Errors.Codes() {
		codes[i] = string(c)
	}
	annotate(r.Context(),
		zap.Int("total_count", page.TotalCount),
		zap.Int("items", len(page.Items)),
		zap.Strings("search_errors", codes),
	)

	status := http.StatusOK
	if page.Failed() {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, searchResponse(page, conv))
}
