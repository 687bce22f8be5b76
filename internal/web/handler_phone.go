package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/vbonduro/phonegallery/internal/domain"
	"github.com/vbonduro/phonegallery/internal/service"
	"github.com/vbonduro/phonegallery/internal/store"
)

const maxJSONBodySize = 8 << 20 // 8 MB, enough for an embedded image

// phoneRequest is the body of POST /phones and PUT /phones/{id}.
type phoneRequest struct {
	Brand     string `json:"brand"`
	Name      string `json:"name"`
	YearStart int    `json:"yearStart"`
	YearEnd   *int   `json:"yearEnd"`
	Kept      *bool  `json:"kept"`
	Liked     *bool  `json:"liked"`
	Image     string `json:"image"`
	domain.Specs
}

func (req phoneRequest) input() service.PhoneInput {
	return service.PhoneInput{
		Brand:     req.Brand,
		Name:      req.Name,
		YearStart: req.YearStart,
		YearEnd:   req.YearEnd,
		Kept:      req.Kept,
		Liked:     req.Liked,
		Image:     req.Image,
		Specs:     req.Specs,
	}
}

// phoneResponse is the single wire shape of a phone. The image field carries
// the embedded data URL when one is stored, otherwise the path.
type phoneResponse struct {
	ID        int64  `json:"id"`
	Brand     string `json:"brand"`
	Name      string `json:"name"`
	YearStart int    `json:"yearStart"`
	YearEnd   *int   `json:"yearEnd"`
	Kept      bool   `json:"kept"`
	Liked     bool   `json:"liked"`
	Image     string `json:"image"`
	domain.Specs
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newPhoneResponse(p *domain.Phone) phoneResponse {
	return phoneResponse{
		ID:        p.ID,
		Brand:     p.Brand,
		Name:      p.Name,
		YearStart: p.YearStart,
		YearEnd:   p.YearEnd,
		Kept:      p.Kept,
		Liked:     p.Liked,
		Image:     p.ResolvedImage(),
		Specs:     p.Specs,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (s *Server) handleListPhones(w http.ResponseWriter, r *http.Request) {
	phones, err := s.service.ListPhones(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch phones")
		s.logger.Error("list phones failed", "error", err)
		return
	}

	resp := make([]phoneResponse, 0, len(phones))
	for _, p := range phones {
		resp = append(resp, newPhoneResponse(p))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPhone(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid phone id")
		return
	}

	phone, err := s.service.GetPhone(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch phone")
		s.logger.Error("get phone failed", "id", id, "error", err)
		return
	}
	if phone == nil {
		s.writeError(w, http.StatusNotFound, "Phone not found")
		return
	}
	s.writeJSON(w, http.StatusOK, newPhoneResponse(phone))
}

func (s *Server) handleCreatePhone(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodePhoneRequest(w, r)
	if !ok {
		return
	}

	phone, err := s.service.CreatePhone(r.Context(), req.input())
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusBadRequest, verr.Msg)
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to create phone")
		s.logger.Error("create phone failed", "error", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, newPhoneResponse(phone))
}

func (s *Server) handleUpdatePhone(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid phone id")
		return
	}
	req, ok := s.decodePhoneRequest(w, r)
	if !ok {
		return
	}

	phone, err := s.service.UpdatePhone(r.Context(), id, req.input())
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			s.writeError(w, http.StatusBadRequest, verr.Msg)
		case errors.Is(err, store.ErrNotFound):
			s.writeError(w, http.StatusNotFound, "Phone not found")
		default:
			s.writeError(w, http.StatusInternalServerError, "Failed to update phone")
			s.logger.Error("update phone failed", "id", id, "error", err)
		}
		return
	}
	s.writeJSON(w, http.StatusOK, newPhoneResponse(phone))
}

func (s *Server) handleDeletePhone(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid phone id")
		return
	}

	if err := s.service.DeletePhone(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Phone not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to delete phone")
		s.logger.Error("delete phone failed", "id", id, "error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Phone deleted successfully"})
}

func (s *Server) decodePhoneRequest(w http.ResponseWriter, r *http.Request) (phoneRequest, bool) {
	var req phoneRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return req, false
		}
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	return req, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
