package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage"
)

const userColumns = `uid, name, email, phone, role, department, duty, owes_to, gets_from,
	monthly_contribution, last_payment, join_date, fines`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser reads one users row into the admin or member variant.
func scanUser(row rowScanner) (*models.User, error) {
	var (
		user  models.User
		role  string
		m     models.MemberProfile
		fines string
	)
	if err := row.Scan(
		&user.UID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&role,
		&m.Department,
		&m.Duty,
		&m.OwesTo,
		&m.GetsFrom,
		&m.MonthlyContribution,
		&m.LastPayment,
		&m.JoinDate,
		&fines,
	); err != nil {
		return nil, err
	}

	if models.Role(role) == models.RoleMember {
		if err := json.Unmarshal([]byte(fines), &m.Fines); err != nil {
			return nil, fmt.Errorf("failed to decode fines for %s: %w", user.UID, err)
		}
		if m.Fines == nil {
			m.Fines = []models.Fine{}
		}
		user.Member = &m
	}
	return &user, nil
}

// userArgs flattens a user into column values, member fields empty for admins.
func userArgs(user *models.User) ([]any, error) {
	m := user.Member
	if m == nil {
		m = &models.MemberProfile{}
	}
	fines := m.Fines
	if fines == nil {
		fines = []models.Fine{}
	}
	encoded, err := json.Marshal(fines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fines: %w", err)
	}
	return []any{
		user.Name,
		user.Email,
		user.Phone,
		string(user.Role()),
		m.Department,
		m.Duty,
		m.OwesTo,
		m.GetsFrom,
		m.MonthlyContribution,
		m.LastPayment,
		m.JoinDate,
		string(encoded),
	}, nil
}

// CreateUser inserts a new user profile keyed by its uid.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	args, err := userArgs(user)
	if err != nil {
		return wrap("create", storage.Users, err)
	}
	args = append([]any{user.UID}, args...)
	args = append(args, time.Now().Unix())

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return wrap("create", storage.Users, err)
	}

	s.feed.Publish(storage.Users)
	return nil
}

// GetUser retrieves a user profile by uid.
func (s *SQLiteStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE uid = ?`,
		uid,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, wrap("get", storage.Users, err)
	}
	return user, nil
}

// UpdateUser reads the profile, applies upd and writes it back in one transaction.
func (s *SQLiteStore) UpdateUser(ctx context.Context, uid string, upd models.UserUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("update", storage.Users, err)
	}
	defer tx.Rollback()

	user, err := scanUser(tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE uid = ?`,
		uid,
	))
	if err != nil {
		return wrap("update", storage.Users, err)
	}

	upd.Apply(user)

	args, err := userArgs(user)
	if err != nil {
		return wrap("update", storage.Users, err)
	}
	args = append(args, uid)

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, phone = ?, role = ?, department = ?, duty = ?,
		 owes_to = ?, gets_from = ?, monthly_contribution = ?, last_payment = ?, join_date = ?, fines = ?
		 WHERE uid = ?`,
		args...,
	)
	if err != nil {
		return wrap("update", storage.Users, err)
	}

	if err := tx.Commit(); err != nil {
		return wrap("update", storage.Users, fmt.Errorf("failed to commit transaction: %w", err))
	}

	s.feed.Publish(storage.Users)
	return nil
}

// ListMembers retrieves every user with the member role, in join order.
func (s *SQLiteStore) ListMembers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY created_at, uid`,
		string(models.RoleMember),
	)
	if err != nil {
		return nil, wrap("list", storage.Users, err)
	}
	defer rows.Close()

	members := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, wrap("list", storage.Users, err)
		}
		members = append(members, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", storage.Users, err)
	}

	return members, nil
}

// CreateCredential stores an auth provider account.
func (s *SQLiteStore) CreateCredential(ctx context.Context, c *models.Credential) error {
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (uid, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		c.UID, c.Email, c.PasswordHash, c.CreatedAt,
	)
	if err != nil {
		return wrap("create", storage.Credentials, err)
	}
	return nil
}

// GetCredentialByEmail retrieves an account by its login email.
func (s *SQLiteStore) GetCredentialByEmail(ctx context.Context, email string) (*models.Credential, error) {
	c := &models.Credential{}
	err := s.db.QueryRowContext(ctx,
		`SELECT uid, email, password_hash, created_at FROM credentials WHERE email = ?`,
		email,
	).Scan(&c.UID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		return nil, wrap("get", storage.Credentials, err)
	}
	return c, nil
}

// DeleteCredential removes an account by uid.
func (s *SQLiteStore) DeleteCredential(ctx context.Context, uid string) error {
	err := execOne(s.db.ExecContext(ctx, `DELETE FROM credentials WHERE uid = ?`, uid))
	return wrap("delete", storage.Credentials, err)
}

// GetSecrets reads the config/secrets document.
func (s *SQLiteStore) GetSecrets(ctx context.Context) (*models.Secrets, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM config WHERE id = 'secrets'`).Scan(&data)
	if err != nil {
		return nil, wrap("get", storage.Config, err)
	}

	secrets := &models.Secrets{}
	if err := json.Unmarshal([]byte(data), secrets); err != nil {
		return nil, wrap("get", storage.Config, fmt.Errorf("failed to decode secrets: %w", err))
	}
	return secrets, nil
}

// SetSecrets replaces the config/secrets document.
func (s *SQLiteStore) SetSecrets(ctx context.Context, secrets *models.Secrets) error {
	data, err := json.Marshal(secrets)
	if err != nil {
		return wrap("set", storage.Config, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO config (id, data) VALUES ('secrets', ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		string(data),
	)
	if err != nil {
		return wrap("set", storage.Config, err)
	}
	s.feed.Publish(storage.Config)
	return nil
}
