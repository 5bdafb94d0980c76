package http

import (
	"net/http"

	"ledger/internal/log"
)

// handleCategoryOptions renders the <option> list of the category select.
func (s *Server) handleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := readContext(r)
	defer cancel()

	cats, err := s.deps.Categories.ListActive(ctx)
	if err != nil {
		s.writeError(w, r, log.OpList, err, "Failed to load categories")
		return
	}
	s.render(w, r, http.StatusOK, "category_options", cats)
}

// handleCreateCategory ensures a category exists and answers with the
// refreshed option list. Creating an existing name is not an error.
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Malformed request body").Write(w)
		return
	}

	cat, err := s.deps.Categories.Ensure(r.Context(), sanitizeInput(r.PostForm.Get("name")))
	if err != nil {
		s.writeError(w, r, log.OpCreate, err, "Failed to save category")
		return
	}

	ctx, cancel := readContext(r)
	defer cancel()
	cats, err := s.deps.Categories.ListActive(ctx)
	if err != nil {
		s.writeError(w, r, log.OpList, err, "Failed to load categories")
		return
	}

	var buf []byte
	if b, err := s.renderString("category_options", cats); err == nil {
		buf = b
	} else {
		s.events.LogError(r.Context(), "Template execution failed", err, log.ComponentTemplate, log.OpRender, nil)
	}
	NewHTMXResponse().
		TriggerCategoriesChanged().
		TriggerSuccessNotification("Category "+cat.Name+" ready").
		Header("Content-Type", "text/html; charset=utf-8").
		Body(buf).
		Write(w)
}
