// Package admin is the staff-only CRUD surface over users and links.
// It mirrors the operator console: curated field groupings, id
// ordering, double password entry on account creation, and a read-only
// last-login timestamp.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alu-network/backend/internal/httputil"
	"github.com/alu-network/backend/internal/link"
	"github.com/alu-network/backend/internal/logging"
	"github.com/alu-network/backend/internal/user"
	"github.com/alu-network/backend/internal/validation"
)

// Handler contains the staff-only HTTP handlers
type Handler struct {
	users  *user.Service
	links  *link.Service
	logger *logging.Logger
}

func NewHandler(users *user.Service, links *link.Service, logger *logging.Logger) *Handler {
	return &Handler{
		users:  users,
		links:  links,
		logger: logger,
	}
}

// UserRow is one line of the user listing
type UserRow struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	UserRole string `json:"user_role"`
}

// UserDetail groups a user's fields the way an operator sees them
type UserDetail struct {
	ID                  int64                `json:"id"`
	Credentials         CredentialsFields    `json:"credentials"`
	PersonalInformation PersonalFields       `json:"personal_information"`
	Permissions         PermissionFields     `json:"permissions"`
	ImportantDates      ImportantDatesFields `json:"important_dates"`
}

type CredentialsFields struct {
	Email string `json:"email"`
}

type PersonalFields struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	ShortBio         string `json:"short_bio"`
	AboutMe          string `json:"about_me"`
	UserRole         string `json:"user_role"`
	Intake           string `json:"intake"`
	ProfessionalRole string `json:"professional_role"`
	CurrentCompany   string `json:"current_company"`
}

type PermissionFields struct {
	IsActive    bool `json:"is_active"`
	IsStaff     bool `json:"is_staff"`
	IsSuperuser bool `json:"is_superuser"`
}

type ImportantDatesFields struct {
	// Read-only; updates ignore this field
	LastLogin *time.Time `json:"last_login"`
}

// CreateUserRequest is the account creation form. The password must be
// entered twice.
type CreateUserRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	PasswordConfirm  string `json:"password_confirm"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	ShortBio         string `json:"short_bio"`
	AboutMe          string `json:"about_me"`
	UserRole         string `json:"user_role"`
	Intake           string `json:"intake"`
	ProfessionalRole string `json:"professional_role"`
	CurrentCompany   string `json:"current_company"`
	IsStaff          bool   `json:"is_staff"`
	IsSuperuser      bool   `json:"is_superuser"`
}

// UpdateUserRequest is a partial update; last_login is not accepted.
type UpdateUserRequest struct {
	Email            *string `json:"email"`
	Password         *string `json:"password"`
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	ShortBio         *string `json:"short_bio"`
	AboutMe          *string `json:"about_me"`
	UserRole         *string `json:"user_role"`
	Intake           *string `json:"intake"`
	ProfessionalRole *string `json:"professional_role"`
	CurrentCompany   *string `json:"current_company"`
	IsActive         *bool   `json:"is_active"`
	IsStaff          *bool   `json:"is_staff"`
	IsSuperuser      *bool   `json:"is_superuser"`
}

// LinkRow is one line of the link listing
type LinkRow struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

// CreateLinkRequest attaches a link to any user
type CreateLinkRequest struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

// ListUsers returns all accounts ordered by id
// @Summary      List users (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} admin.UserRow
// @Failure      403 {object} httputil.ErrorResponse "Staff access required"
// @Router       /api/admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.users.List(r.Context())
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list users", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	rows := make([]UserRow, 0, len(users))
	for i := range users {
		rows = append(rows, UserRow{
			ID:       users[i].ID,
			FullName: users[i].FullName(),
			Email:    users[i].Email,
			UserRole: users[i].UserRole,
		})
	}

	httputil.RespondJSON(w, rows, http.StatusOK)
}

// CreateUser creates an account from the admin form
// @Summary      Create a user (admin)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body admin.CreateUserRequest true "Account form"
// @Success      201 {object} admin.UserDetail
// @Failure      400 {object} validation.Errors "Field errors"
// @Router       /api/admin/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid admin user create body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	verrs := validation.Errors{}
	if req.Password == "" {
		verrs.Add("password", "this field is required")
	}
	if req.PasswordConfirm == "" {
		verrs.Add("password_confirm", "this field is required")
	} else if req.Password != "" && req.Password != req.PasswordConfirm {
		verrs.Add("password_confirm", "the two password fields didn't match")
	}
	if req.FirstName == "" {
		verrs.Add("first_name", "this field is required")
	}
	if req.LastName == "" {
		verrs.Add("last_name", "this field is required")
	}
	if req.UserRole == "" {
		verrs.Add("user_role", "this field is required")
	}
	if len(verrs) > 0 {
		httputil.RespondFieldErrors(w, verrs)
		return
	}

	created, err := h.users.Create(r.Context(), user.CreateInput{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		ShortBio:         req.ShortBio,
		AboutMe:          req.AboutMe,
		UserRole:         req.UserRole,
		Intake:           req.Intake,
		ProfessionalRole: req.ProfessionalRole,
		CurrentCompany:   req.CurrentCompany,
		IsStaff:          req.IsStaff,
		IsSuperuser:      req.IsSuperuser,
	})
	if err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			httputil.RespondFieldErrors(w, fieldErrs)
			return
		}
		logger.Error("failed to create user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("admin created user", "user_id", created.ID)

	httputil.RespondJSON(w, serializeDetail(created), http.StatusCreated)
}

// GetUser returns one account with fields grouped into fieldsets
// @Summary      Retrieve a user (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} admin.UserDetail
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/admin/users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	account, err := h.users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, serializeDetail(account), http.StatusOK)
}

// UpdateUser applies a partial update to any account
// @Summary      Update a user (admin)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Param        request body admin.UpdateUserRequest true "Fields to change"
// @Success      200 {object} admin.UserDetail
// @Failure      400 {object} validation.Errors "Field errors"
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/admin/users/{id} [patch]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid admin user update body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.users.Update(r.Context(), id, user.UpdateInput{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		ShortBio:         req.ShortBio,
		AboutMe:          req.AboutMe,
		UserRole:         req.UserRole,
		Intake:           req.Intake,
		ProfessionalRole: req.ProfessionalRole,
		CurrentCompany:   req.CurrentCompany,
		IsActive:         req.IsActive,
		IsStaff:          req.IsStaff,
		IsSuperuser:      req.IsSuperuser,
	})
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			httputil.RespondFieldErrors(w, verrs)
			return
		}
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("admin updated user", "user_id", id)

	httputil.RespondJSON(w, serializeDetail(updated), http.StatusOK)
}

// DeleteUser removes an account; the user's links are removed with it
// @Summary      Delete a user (admin)
// @Tags         admin
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      204 "No Content"
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/admin/users/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("admin deleted user", "user_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// ListLinks returns every link ordered by id
// @Summary      List links (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} admin.LinkRow
// @Router       /api/admin/links [get]
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	links, err := h.links.List(r.Context())
	if err != nil {
		logger.Error("failed to list links", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list links", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	rows := make([]LinkRow, 0, len(links))
	for i := range links {
		rows = append(rows, LinkRow{
			ID:     links[i].ID,
			UserID: links[i].UserID,
			Name:   links[i].Name,
			URL:    links[i].URL,
		})
	}

	httputil.RespondJSON(w, rows, http.StatusOK)
}

// CreateLink attaches a link to any user
// @Summary      Create a link (admin)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body admin.CreateLinkRequest true "Link fields"
// @Success      201 {object} admin.LinkRow
// @Failure      400 {object} validation.Errors "Field errors"
// @Router       /api/admin/links [post]
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid admin link create body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if _, err := h.users.Get(r.Context(), req.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			verrs := validation.Errors{}
			verrs.Add("user_id", "user does not exist")
			httputil.RespondFieldErrors(w, verrs)
			return
		}
		logger.Error("failed to resolve link owner", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create link", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	created, err := h.links.Create(r.Context(), req.UserID, req.Name, req.URL)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			httputil.RespondFieldErrors(w, verrs)
			return
		}
		logger.Error("failed to create link", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create link", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("admin created link", "link_id", created.ID, "user_id", req.UserID)

	httputil.RespondJSON(w, LinkRow{
		ID:     created.ID,
		UserID: created.UserID,
		Name:   created.Name,
		URL:    created.URL,
	}, http.StatusCreated)
}

// DeleteLink removes any link
// @Summary      Delete a link (admin)
// @Tags         admin
// @Security     BearerAuth
// @Param        id path int true "Link ID"
// @Success      204 "No Content"
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/admin/links/{id} [delete]
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "link not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	if err := h.links.Delete(r.Context(), id); err != nil {
		if errors.Is(err, link.ErrNotFound) {
			httputil.RespondErrorWithCode(w, "link not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete link", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete link", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("admin deleted link", "link_id", id)

	w.WriteHeader(http.StatusNoContent)
}

func serializeDetail(u *user.User) UserDetail {
	return UserDetail{
		ID: u.ID,
		Credentials: CredentialsFields{
			Email: u.Email,
		},
		PersonalInformation: PersonalFields{
			FirstName:        u.FirstName,
			LastName:         u.LastName,
			ShortBio:         u.ShortBio,
			AboutMe:          u.AboutMe,
			UserRole:         u.UserRole,
			Intake:           u.Intake,
			ProfessionalRole: u.ProfessionalRole,
			CurrentCompany:   u.CurrentCompany,
		},
		Permissions: PermissionFields{
			IsActive:    u.IsActive,
			IsStaff:     u.IsStaff,
			IsSuperuser: u.IsSuperuser,
		},
		ImportantDates: ImportantDatesFields{
			LastLogin: u.LastLogin,
		},
	}
}
