package handlers

import (
	"net/http"

	"familycal/internal/service"
)

// FamilyHandler handles family and roster HTTP requests
type FamilyHandler struct {
	familyService *service.FamilyService
	emailService  *service.EmailService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService, emailService *service.EmailService) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		emailService:  emailService,
	}
}

// Create creates a family with the caller as admin
func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	family, err := h.familyService.CreateFamily(user.ID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFamilyView(family))
}

// Join adds the caller to the family matching an invite code
func (h *FamilyHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		InviteCode string `json:"inviteCode"`
		Nickname   string `json:"nickname"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	family, err := h.familyService.JoinFamily(user.ID, req.InviteCode, req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFamilyView(family))
}

// Leave removes the caller from the scoped family
func (h *FamilyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	if err := h.familyService.LeaveFamily(scope); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// List returns every family the caller belongs to
func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	families, err := h.familyService.GetUserFamilies(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFamilyViews(families))
}

// Get returns the scoped family
func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	family, err := h.familyService.GetFamily(scope.FamilyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFamilyView(family))
}

// Members returns the scoped family's roster
func (h *FamilyHandler) Members(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	members, err := h.familyService.GetMembers(scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberViews(members))
}

// SetNotifications toggles the caller's notification switch in the
// scoped family.
func (h *FamilyHandler) SetNotifications(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.familyService.SetNotificationEnabled(scope, req.Enabled); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// SendInvite emails the family's invite code to an address outside the roster
func (h *FamilyHandler) SendInvite(w http.ResponseWriter, r *http.Request) {
	scope := GetScopeFromContext(r.Context())
	user := GetUserFromContext(r.Context())

	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email is required", Field: "email"})
		return
	}

	family, err := h.familyService.GetFamily(scope.FamilyID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.emailService.SendFamilyInvite(r.Context(), req.Email, family.Name, user.DisplayName(), family.InviteCode); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// RepairAdmin re-issues the admin member row for a family whose creation
// flow failed between its two writes. Only the recorded admin may call it.
func (h *FamilyHandler) RepairAdmin(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID := r.PathValue("id")

	family, err := h.familyService.GetFamily(familyID)
	if err != nil {
		writeError(w, err)
		return
	}
	if family.AdminID != user.ID {
		writeError(w, service.ErrNotFamilyMember)
		return
	}

	if err := h.familyService.EnsureAdminMember(familyID, user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
