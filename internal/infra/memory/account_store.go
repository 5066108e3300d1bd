package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-rewards-service/internal/domain"
)

// StudentStore is an in-memory implementation of app.StudentRepository.
type StudentStore struct {
	mu       sync.RWMutex
	students map[string]domain.Student
}

func NewStudentStore() *StudentStore {
	return &StudentStore{students: make(map[string]domain.Student)}
}

func (s *StudentStore) Create(_ context.Context, student domain.Student) (domain.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[student.ID] = student
	return student, nil
}

func (s *StudentStore) Get(_ context.Context, id string) (domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	student, ok := s.students[id]
	if !ok {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	return student, nil
}

func (s *StudentStore) GetByEmail(_ context.Context, email string) (domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, student := range s.students {
		if student.Email == email {
			return student, nil
		}
	}
	return domain.Student{}, domain.ErrStudentNotFound
}

func (s *StudentStore) List(_ context.Context) ([]domain.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Student, 0, len(s.students))
	for _, student := range s.students {
		out = append(out, student)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *StudentStore) Update(_ context.Context, student domain.Student) (domain.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[student.ID]; !ok {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	s.students[student.ID] = student
	return student, nil
}

func (s *StudentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[id]; !ok {
		return domain.ErrStudentNotFound
	}
	delete(s.students, id)
	return nil
}

// AdminStore is an in-memory implementation of app.AdminRepository.
type AdminStore struct {
	mu     sync.RWMutex
	admins map[string]domain.Admin
}

func NewAdminStore() *AdminStore {
	return &AdminStore{admins: make(map[string]domain.Admin)}
}

func (s *AdminStore) Create(_ context.Context, admin domain.Admin) (domain.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[admin.ID] = admin
	return admin, nil
}

func (s *AdminStore) Get(_ context.Context, id string) (domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[id]
	if !ok {
		return domain.Admin{}, domain.ErrAdminNotFound
	}
	return admin, nil
}

func (s *AdminStore) GetByEmail(_ context.Context, email string) (domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, admin := range s.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return domain.Admin{}, domain.ErrAdminNotFound
}

func (s *AdminStore) List(_ context.Context) ([]domain.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Admin, 0, len(s.admins))
	for _, admin := range s.admins {
		out = append(out, admin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *AdminStore) Update(_ context.Context, admin domain.Admin) (domain.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[admin.ID]; !ok {
		return domain.Admin{}, domain.ErrAdminNotFound
	}
	s.admins[admin.ID] = admin
	return admin, nil
}

func (s *AdminStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[id]; !ok {
		return domain.ErrAdminNotFound
	}
	delete(s.admins, id)
	return nil
}

// UserStore is an in-memory implementation of app.UserRepository.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Create(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return user, nil
}

func (s *UserStore) Get(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) List(_ context.Context, role string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		if role == "" || user.Role == role {
			out = append(out, user)
		}
	}
	// Newest first, matching the SQL ORDER BY created_at DESC.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *UserStore) Update(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}
