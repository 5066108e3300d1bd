package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-rewards-service/internal/app"
	"quiz-rewards-service/internal/auth"
	"quiz-rewards-service/internal/domain"
)

// AccountHandler serves login and the account CRUD for students, admins,
// and generic users.
type AccountHandler struct {
	accounts *app.AccountService
	auth     *auth.Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AccountHandler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	student, err := h.accounts.AuthenticateStudent(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := h.auth.Issue(student.ID, student.Role, student.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "student": student})
}

func (h *AccountHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	admin, err := h.accounts.AuthenticateAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := h.auth.Issue(admin.ID, admin.Role, admin.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token, "admin": admin})
}

type studentRequest struct {
	domain.Student
	Password string `json:"password"`
}

func (h *AccountHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	student, err := h.accounts.CreateStudent(r.Context(), req.Student, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, student)
}

func (h *AccountHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Student.ID = chi.URLParam(r, "id")
	student, err := h.accounts.UpdateStudent(r.Context(), req.Student, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *AccountHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.DeleteStudent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *AccountHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.accounts.GetStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *AccountHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.accounts.ListStudents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangeStudentPassword changes the password of the calling student; the
// target account always comes from the token.
func (h *AccountHandler) ChangeStudentPassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	claims := auth.ClaimsFromContext(r.Context())
	if err := h.accounts.ChangeStudentPassword(r.Context(), claims.UserID,
		req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": true})
}

type adminRequest struct {
	domain.Admin
	Password string `json:"password"`
}

func (h *AccountHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	admin, err := h.accounts.CreateAdmin(r.Context(), req.Admin, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func (h *AccountHandler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Admin.ID = chi.URLParam(r, "id")
	admin, err := h.accounts.UpdateAdmin(r.Context(), req.Admin, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *AccountHandler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.DeleteAdmin(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *AccountHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.accounts.GetAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

func (h *AccountHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.accounts.ListAdmins(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

type userRequest struct {
	domain.User
	Password string `json:"password"`
}

func (h *AccountHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.accounts.CreateUser(r.Context(), req.User, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AccountHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.User.ID = chi.URLParam(r, "id")
	user, err := h.accounts.UpdateUser(r.Context(), req.User, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *AccountHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
