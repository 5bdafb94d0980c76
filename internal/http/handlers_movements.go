package http

import (
	"net/http"
	"strings"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
)

type movementFormData struct {
	Categories []core.Category
	Today      string
	Kind       string
}

// handleNewMovement renders the create form with the active categories.
// ?kind= preselects the kind.
func (s *Server) handleNewMovement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := readContext(r)
	defer cancel()

	cats, err := s.deps.Categories.ListActive(ctx)
	if err != nil {
		s.writeError(w, r, log.OpList, err, "Failed to load categories")
		return
	}

	kind := core.KindExpense
	if v := r.URL.Query().Get("kind"); v != "" {
		if k, err := core.ParseKind(v); err == nil {
			kind = k
		}
	}

	s.render(w, r, http.StatusOK, "new_movement_page", movementFormData{
		Categories: cats,
		Today:      core.DateOf(time.Now()).String(),
		Kind:       kind.String(),
	})
}

// handleCreateMovement stores one movement from a form or JSON body and
// answers with a confirmation partial.
func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		s.logger.WarnContext(r.Context(), "Malformed movement body", "error", err)
		BadRequestError("Malformed request body").Write(w)
		return
	}
	in := parser.MovementInput()

	rec, err := s.deps.Ledger.CreateMovement(r.Context(), in)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err, "Failed to save movement")
		return
	}
	s.countCreated()

	body, err := s.renderString("movement_created", rec)
	if err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err, log.ComponentTemplate, log.OpRender, nil)
		body = []byte(`<div class="success">Movement saved</div>`)
	}

	resp := NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerMovementCreated(rec.Kind().String(), rec.ID).
		TriggerFormReset().
		BodyHTML(string(body))
	if rec.Kind() == core.KindExpense && strings.TrimSpace(in.NewCategory) != "" {
		resp.TriggerCategoriesChanged()
	}
	resp.Write(w)
}

// handleDeleteMovement soft deletes a record and answers with JSON
// {success, message}. The kind is checked before the id.
func (s *Server) handleDeleteMovement(w http.ResponseWriter, r *http.Request) {
	kindName := r.PathValue("kind")
	id, _ := ParseID(r.PathValue("id"))

	if err := s.deps.Ledger.DeleteMovement(r.Context(), kindName, id); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.events.LogError(r.Context(), "Failed to delete movement", err, log.ComponentHTTP, log.OpDelete,
				log.LogFields{log.FieldKind: kindName, log.FieldRecordID: r.PathValue("id")})
		}
		JSONResult(status, false, publicMessage(err, "Failed to delete movement")).Write(w)
		return
	}
	s.countDeleted()

	k, _ := core.ParseKind(kindName)
	NewHTMXResponse().
		TriggerMovementDeleted(k.String(), id).
		TriggerSuccessNotification(k.Label() + " deleted").
		BodyJSON(ActionResult{Success: true, Message: k.Label() + " deleted"}).
		Write(w)
}
