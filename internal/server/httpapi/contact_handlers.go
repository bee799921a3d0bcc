package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/imagifine/internal/server/models"
)

type contactView struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Query     string    `json:"query"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func contactViewOf(c *models.Contact) contactView {
	return contactView{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Query:     c.Query,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}

func (s *Server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Query     string `json:"query"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	c, err := s.contacts.Submit(r.Context(), req.FirstName, req.LastName, req.Email, req.Query)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "submission received",
		"contact": contactViewOf(c),
	})
}

func (s *Server) handleContactList(w http.ResponseWriter, r *http.Request) {
	list, err := s.contacts.List(r.Context())
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	views := make([]contactView, 0, len(list))
	for _, c := range list {
		views = append(views, contactViewOf(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": views})
}

func (s *Server) handleContactStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	c, err := s.contacts.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"contact": contactViewOf(c)})
}
