package api

import (
	"net/http"

	"shareit/internal/models"
)

type itemPatchBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type commentBody struct {
	Text string `json:"text"`
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var req models.NewItem
	if err := decodeJSON(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	item, err := s.svc.Items.CreateItem(r.Context(), req, userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var body itemPatchBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	patch := models.ItemPatch{Name: body.Name, Description: body.Description, Available: body.Available}
	item, err := s.svc.Items.UpdateItem(r.Context(), itemID, patch, userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	item, err := s.svc.Items.GetItem(r.Context(), itemID, userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleItemsByOwner(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	items, err := s.svc.Items.GetItemsByOwner(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleSearchItems does not require the identity header.
func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Items.SearchItems(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var body commentBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	comment, err := s.svc.Items.AddComment(r.Context(), itemID, body.Text, userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
