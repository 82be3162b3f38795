package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/shopcore/internal/api/dto"
	"github.com/RoyceAzure/lab/shopcore/internal/api/response"
	"github.com/RoyceAzure/lab/shopcore/internal/domain/model"
	"github.com/RoyceAzure/lab/shopcore/internal/service"
)

type SessionHandler struct {
	sessionService service.ISessionService
}

func NewSessionHandler(sessionService service.ISessionService) *SessionHandler {
	if sessionService == nil {
		panic("sessionService cannot be nil")
	}
	return &SessionHandler{sessionService: sessionService}
}

// SignIn POST /session
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorJSON(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	identity := model.SessionIdentity{
		UserID: req.UserID,
		Role:   model.Role(req.Role),
		Token:  req.Token,
	}
	if err := h.sessionService.SignIn(r.Context(), identity); err != nil {
		response.WriteError(w, err)
		return
	}

	response.SuccessJSON(w, toSessionDTO(h.sessionService.Identity()))
}

// SignOut DELETE /session
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessionService.SignOut(r.Context())
	response.SuccessJSON(w, toSessionDTO(h.sessionService.Identity()))
}

func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	response.SuccessJSON(w, toSessionDTO(h.sessionService.Identity()))
}

func toSessionDTO(identity model.SessionIdentity) dto.SessionDTO {
	return dto.SessionDTO{
		UserID: identity.UserID,
		Role:   identity.Role,
		Buyer:  identity.IsBuyer(),
	}
}
