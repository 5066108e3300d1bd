package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quiz-rewards-service/internal/domain"
)

// AccountService manages student, admin, and generic user accounts:
// creation, profile updates, login verification, and password changes.
// Token issuance happens in the auth layer; this service only verifies
// credentials against stored bcrypt hashes.
type AccountService struct {
	students StudentRepository
	admins   AdminRepository
	users    UserRepository
}

func NewAccountService(students StudentRepository, admins AdminRepository, users UserRepository) *AccountService {
	return &AccountService{students: students, admins: admins, users: users}
}

func hashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func checkPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// AuthenticateStudent verifies a student login.
func (s *AccountService) AuthenticateStudent(ctx context.Context, email, password string) (domain.Student, error) {
	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		return domain.Student{}, domain.ErrInvalidCredentials
	}
	if !checkPassword(student.PasswordHash, password) {
		return domain.Student{}, domain.ErrInvalidCredentials
	}
	return student, nil
}

// AuthenticateAdmin verifies an admin login.
func (s *AccountService) AuthenticateAdmin(ctx context.Context, email, password string) (domain.Admin, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return domain.Admin{}, domain.ErrInvalidCredentials
	}
	if !checkPassword(admin.PasswordHash, password) {
		return domain.Admin{}, domain.ErrInvalidCredentials
	}
	return admin, nil
}

// CreateStudent registers a student with a hashed password.
func (s *AccountService) CreateStudent(ctx context.Context, student domain.Student, password string) (domain.Student, error) {
	if student.Email == "" {
		return domain.Student{}, domain.MissingField("email")
	}
	if password == "" {
		return domain.Student{}, domain.MissingField("password")
	}
	if _, err := s.students.GetByEmail(ctx, student.Email); err == nil {
		return domain.Student{}, domain.ErrEmailTaken
	}
	hash, err := hashPassword(password)
	if err != nil {
		return domain.Student{}, err
	}
	student.ID = uuid.NewString()
	student.PasswordHash = hash
	student.Role = "student"
	return s.students.Create(ctx, student)
}

// UpdateStudent updates profile fields; a non-blank password is re-hashed.
func (s *AccountService) UpdateStudent(ctx context.Context, student domain.Student, password string) (domain.Student, error) {
	existing, err := s.students.Get(ctx, student.ID)
	if err != nil {
		return domain.Student{}, err
	}
	existing.Name = student.Name
	existing.Phone = student.Phone
	existing.DOB = student.DOB
	existing.Gender = student.Gender
	existing.ClassName = student.ClassName
	if strings.TrimSpace(password) != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return domain.Student{}, err
		}
		existing.PasswordHash = hash
	}
	return s.students.Update(ctx, existing)
}

// DeleteStudent removes a student account.
func (s *AccountService) DeleteStudent(ctx context.Context, id string) error {
	return s.students.Delete(ctx, id)
}

// GetStudent returns one student.
func (s *AccountService) GetStudent(ctx context.Context, id string) (domain.Student, error) {
	return s.students.Get(ctx, id)
}

// ListStudents returns all students.
func (s *AccountService) ListStudents(ctx context.Context) ([]domain.Student, error) {
	return s.students.List(ctx)
}

// ChangeStudentPassword verifies the current password and stores a new hash.
func (s *AccountService) ChangeStudentPassword(ctx context.Context, studentID, current, next, confirm string) error {
	switch {
	case current == "":
		return domain.MissingField("currentPassword")
	case next == "":
		return domain.MissingField("newPassword")
	case confirm == "":
		return domain.MissingField("confirmPassword")
	case next != confirm:
		return domain.InvalidField("confirmPassword", "passwords do not match")
	}
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return err
	}
	if !checkPassword(student.PasswordHash, current) {
		return domain.ErrInvalidCredentials
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	student.PasswordHash = hash
	_, err = s.students.Update(ctx, student)
	return err
}

// CreateAdmin registers an admin. Role defaults to "admin"; the CLI seed
// command passes "superadmin".
func (s *AccountService) CreateAdmin(ctx context.Context, admin domain.Admin, password string) (domain.Admin, error) {
	if admin.Email == "" {
		return domain.Admin{}, domain.MissingField("email")
	}
	if password == "" {
		return domain.Admin{}, domain.MissingField("password")
	}
	if _, err := s.admins.GetByEmail(ctx, admin.Email); err == nil {
		return domain.Admin{}, domain.ErrEmailTaken
	}
	hash, err := hashPassword(password)
	if err != nil {
		return domain.Admin{}, err
	}
	admin.ID = uuid.NewString()
	admin.PasswordHash = hash
	if admin.Role == "" {
		admin.Role = "admin"
	}
	return s.admins.Create(ctx, admin)
}

// UpdateAdmin updates profile fields; a non-blank password is re-hashed.
func (s *AccountService) UpdateAdmin(ctx context.Context, admin domain.Admin, password string) (domain.Admin, error) {
	existing, err := s.admins.Get(ctx, admin.ID)
	if err != nil {
		return domain.Admin{}, err
	}
	existing.Name = admin.Name
	existing.Phone = admin.Phone
	existing.DOB = admin.DOB
	existing.Gender = admin.Gender
	if strings.TrimSpace(password) != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return domain.Admin{}, err
		}
		existing.PasswordHash = hash
	}
	return s.admins.Update(ctx, existing)
}

// DeleteAdmin removes an admin account.
func (s *AccountService) DeleteAdmin(ctx context.Context, id string) error {
	return s.admins.Delete(ctx, id)
}

// GetAdmin returns one admin.
func (s *AccountService) GetAdmin(ctx context.Context, id string) (domain.Admin, error) {
	return s.admins.Get(ctx, id)
}

// ListAdmins returns all admins.
func (s *AccountService) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	return s.admins.List(ctx)
}

// CreateUser registers a generic account; the role defaults to "student".
func (s *AccountService) CreateUser(ctx context.Context, user domain.User, password string) (domain.User, error) {
	if user.Email == "" {
		return domain.User{}, domain.MissingField("email")
	}
	if password == "" {
		return domain.User{}, domain.MissingField("password")
	}
	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		return domain.User{}, domain.ErrEmailTaken
	}
	hash, err := hashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	user.ID = uuid.NewString()
	user.PasswordHash = hash
	if user.Role == "" {
		user.Role = "student"
	}
	user.CreatedAt = time.Now()
	return s.users.Create(ctx, user)
}

// UpdateUser updates name/role; a non-blank password is re-hashed.
func (s *AccountService) UpdateUser(ctx context.Context, user domain.User, password string) (domain.User, error) {
	existing, err := s.users.Get(ctx, user.ID)
	if err != nil {
		return domain.User{}, err
	}
	existing.Name = user.Name
	if user.Role != "" {
		existing.Role = user.Role
	}
	if strings.TrimSpace(password) != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return domain.User{}, err
		}
		existing.PasswordHash = hash
	}
	return s.users.Update(ctx, existing)
}

// DeleteUser removes a generic account.
func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// GetUser returns one generic account.
func (s *AccountService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.users.Get(ctx, id)
}

// ListUsers returns accounts, optionally filtered by role.
func (s *AccountService) ListUsers(ctx context.Context, role string) ([]domain.User, error) {
	return s.users.List(ctx, role)
}
