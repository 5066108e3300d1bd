package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-rewards-service/internal/domain"
)

// StudentRepository persists student accounts.
type StudentRepository struct {
	pool *pgxpool.Pool
}

func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

const studentColumns = `id, name, email, phone, dob, gender, class_name, password_hash, role`

func scanStudent(row pgx.Row) (domain.Student, error) {
	var s domain.Student
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.DOB, &s.Gender, &s.ClassName, &s.PasswordHash, &s.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Student{}, fmt.Errorf("scan student: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) Create(ctx context.Context, s domain.Student) (domain.Student, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO students (id, name, email, phone, dob, gender, class_name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Name, s.Email, s.Phone, s.DOB, s.Gender, s.ClassName, s.PasswordHash, s.Role)
	if err != nil {
		return domain.Student{}, fmt.Errorf("insert student: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) Get(ctx context.Context, id string) (domain.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id=$1`, id))
}

func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (domain.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE email=$1`, email))
}

func (r *StudentRepository) List(ctx context.Context) ([]domain.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := make([]domain.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *StudentRepository) Update(ctx context.Context, s domain.Student) (domain.Student, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE students
		SET name=$2, phone=$3, dob=$4, gender=$5, class_name=$6, password_hash=$7
		WHERE id=$1`,
		s.ID, s.Name, s.Phone, s.DOB, s.Gender, s.ClassName, s.PasswordHash)
	if err != nil {
		return domain.Student{}, fmt.Errorf("update student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	return s, nil
}

func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

// AdminRepository persists admin accounts.
type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

const adminColumns = `id, name, email, phone, dob, gender, password_hash, role`

func scanAdmin(row pgx.Row) (domain.Admin, error) {
	var a domain.Admin
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.DOB, &a.Gender, &a.PasswordHash, &a.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Admin{}, domain.ErrAdminNotFound
	}
	if err != nil {
		return domain.Admin{}, fmt.Errorf("scan admin: %w", err)
	}
	return a, nil
}

func (r *AdminRepository) Create(ctx context.Context, a domain.Admin) (domain.Admin, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO admins (id, name, email, phone, dob, gender, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Name, a.Email, a.Phone, a.DOB, a.Gender, a.PasswordHash, a.Role)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("insert admin: %w", err)
	}
	return a, nil
}

func (r *AdminRepository) Get(ctx context.Context, id string) (domain.Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id=$1`, id))
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (domain.Admin, error) {
	return scanAdmin(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email=$1`, email))
}

func (r *AdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	admins := make([]domain.Admin, 0)
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *AdminRepository) Update(ctx context.Context, a domain.Admin) (domain.Admin, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE admins
		SET name=$2, phone=$3, dob=$4, gender=$5, password_hash=$6
		WHERE id=$1`,
		a.ID, a.Name, a.Phone, a.DOB, a.Gender, a.PasswordHash)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("update admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Admin{}, domain.ErrAdminNotFound
	}
	return a, nil
}

func (r *AdminRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAdminNotFound
	}
	return nil
}

// UserRepository persists generic accounts.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, created_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u domain.User) (domain.User, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *UserRepository) List(ctx context.Context, role string) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE ($1 = '' OR role = $1)
		ORDER BY created_at DESC`, role)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u domain.User) (domain.User, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET name=$2, password_hash=$3, role=$4 WHERE id=$1`,
		u.ID, u.Name, u.PasswordHash, u.Role)
	if err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
