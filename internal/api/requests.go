package api

import (
	"net/http"

	"shareit/internal/models"
)

type newRequestBody struct {
	Description string `json:"description"`
}

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var body newRequestBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	request, err := s.svc.Requests.CreateRequest(r.Context(), body.Description, userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *HTTPServer) handleRequestsByRequestor(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	requests, err := s.svc.Requests.GetRequestsByRequestor(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleAllRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	from, err := queryInt(r, "from", 0)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	size, err := queryInt(r, "size", models.DefaultRequestsPageSize)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	requests, err := s.svc.Requests.GetAllRequests(r.Context(), userID, from, size)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	requestID, err := pathID(r, "requestId")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	request, err := s.svc.Requests.GetRequest(r.Context(), requestID, userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}
