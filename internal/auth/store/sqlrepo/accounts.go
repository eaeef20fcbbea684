package sqlrepo

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
)

const accountColumns = `id, username, email, phone, first_name, last_name, date_of_birth,
	gender, password_hash, status, role, created_at, updated_at`

type accountsRepo struct {
	q *Queries
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a      domain.Account
		phone  sql.NullString
		dob    sql.NullTime
		gender string
		status string
	)
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &phone, &a.FirstName, &a.LastName, &dob,
		&gender, &a.PasswordHash, &status, &a.Role, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	a.Phone = mapNullString(phone)
	if dob.Valid {
		d := dob.Time.UTC()
		a.DateOfBirth = &d
	}
	a.Gender = domain.Gender(gender)
	a.Status = domain.Status(status)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func (r *accountsRepo) getBy(ctx context.Context, column, value string) (domain.Account, error) {
	row := r.q.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+column+` = ?`, value)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getBy(ctx, "id", id)
}

// GetAccountByUsername matches case-insensitively so "Alice" and "alice"
// resolve to the same account.
func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := r.q.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE lower(username) = lower(?)`, username)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getBy(ctx, "email", strings.ToLower(email))
}

func (r *accountsRepo) GetAccountByPhone(ctx context.Context, phone string) (domain.Account, error) {
	return r.getBy(ctx, "phone", phone)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	_, err := r.q.exec(ctx, `INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, strings.ToLower(a.Email), mapStringNull(a.Phone),
		a.FirstName, a.LastName, mapOptionalDate(a.DateOfBirth), string(a.Gender),
		a.PasswordHash, string(a.Status), a.Role, a.CreatedAt.UTC(), a.UpdatedAt.UTC(),
	)
	return err
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, a domain.Account) error {
	updated := a.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	return r.q.execOne(ctx, `UPDATE accounts
		SET email = ?, phone = ?, first_name = ?, last_name = ?, date_of_birth = ?,
			gender = ?, updated_at = ?
		WHERE id = ?`,
		strings.ToLower(a.Email), mapStringNull(a.Phone), a.FirstName, a.LastName,
		mapOptionalDate(a.DateOfBirth), string(a.Gender), updated.UTC(), a.ID,
	)
}

func (r *accountsRepo) UpdateAccountStatus(ctx context.Context, id string, status domain.Status) error {
	return r.q.execOne(ctx, `UPDATE accounts SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
}

func (r *accountsRepo) UpdateAccountRole(ctx context.Context, id string, role string) error {
	return r.q.execOne(ctx, `UPDATE accounts SET role = ?, updated_at = ? WHERE id = ?`,
		role, time.Now().UTC(), id)
}

func (r *accountsRepo) UpdateAccountPasswordHash(ctx context.Context, id string, hash string) error {
	return r.q.execOne(ctx, `UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC(), id)
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	return r.q.execOne(ctx, `DELETE FROM accounts WHERE id = ?`, id)
}

func (r *accountsRepo) ListAccounts(ctx context.Context, offset, limit int) ([]domain.Account, int, error) {
	total, err := r.CountAccounts(ctx)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.q.query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Account, 0, limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *accountsRepo) CountAccounts(ctx context.Context) (int, error) {
	var n int
	if err := r.q.queryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// mapOptionalDate truncates to the calendar day.
func mapOptionalDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return sql.NullTime{Time: d, Valid: true}
}
