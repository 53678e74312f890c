package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"newsroom/internal/models"
)

const (
	maxAccountNameLen  = 100
	maxAccountEmailLen = 70

	// accountIDFallback is returned by NextID when the store cannot be
	// read. Account creation is never blocked on an allocator failure.
	accountIDFallback = 100
)

// AccountStore handles all account-related database operations.
// Account identifiers are allocated here, never by the database.
type AccountStore struct {
	db *sql.DB

	// allocMu serializes id allocation within this process; see
	// ArticleStore.allocMu.
	allocMu sync.Mutex
}

// NewAccountStore creates a new AccountStore with the given database connection.
func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

const accountColumns = `id, name, email, role, password_hash, totp_secret, totp_enabled, created_at, updated_at`

// scanAccount scans a row into an Account struct.
func scanAccount(scanner interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	err := scanner.Scan(
		&a.ID, &a.Name, &a.Email, &a.Role, &a.PasswordHash,
		&a.TOTPSecret, &a.TOTPEnabled, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// validateAccount checks required fields, length limits and the role value.
func validateAccount(a *models.Account) error {
	if strings.TrimSpace(a.Email) == "" {
		return invalid("email is required")
	}
	if utf8.RuneCountInString(a.Email) > maxAccountEmailLen {
		return invalid("email is too long (max 70 characters)")
	}
	if !strings.Contains(a.Email, "@") {
		return invalid("email is not a valid address")
	}
	if utf8.RuneCountInString(a.Name) > maxAccountNameLen {
		return invalid("name is too long (max 100 characters)")
	}
	if !a.Role.Valid() {
		return invalid("role must be staff (1) or lecturer (2)")
	}
	return nil
}

// Search returns accounts whose name or email contains the term,
// optionally narrowed to a role, ordered by name. Each result carries
// the count of articles the account created.
func (s *AccountStore) Search(term string, role *models.Role) ([]models.Account, error) {
	query := `
		SELECT a.id, a.name, a.email, a.role, a.password_hash,
		       a.totp_secret, a.totp_enabled, a.created_at, a.updated_at,
		       COUNT(ar.id) AS article_count
		FROM accounts a
		LEFT JOIN articles ar ON ar.created_by = a.id`
	var conds []string
	var args []any
	if term != "" {
		args = append(args, likePattern(term))
		p := strconv.Itoa(len(args))
		conds = append(conds, `(a.name LIKE $`+p+` OR a.email LIKE $`+p+`)`)
	}
	if role != nil {
		args = append(args, *role)
		conds = append(conds, `a.role = $`+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		query += `
		WHERE ` + strings.Join(conds, " AND ")
	}
	query += `
		GROUP BY a.id
		ORDER BY a.name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	defer rows.Close()

	var items []models.Account
	for rows.Next() {
		var a models.Account
		err := rows.Scan(
			&a.ID, &a.Name, &a.Email, &a.Role, &a.PasswordHash,
			&a.TOTPSecret, &a.TOTPEnabled, &a.CreatedAt, &a.UpdatedAt,
			&a.ArticleCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// List returns all accounts ordered by name.
func (s *AccountStore) List() ([]models.Account, error) {
	return s.Search("", nil)
}

// FindByID retrieves an account by id. Returns nil if not found.
func (s *AccountStore) FindByID(id int16) (*models.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return a, nil
}

// FindByEmail retrieves an account by email. Returns nil if not found.
func (s *AccountStore) FindByEmail(email string) (*models.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return a, nil
}

// NextID returns one more than the largest allocated account id, 1 when
// no accounts exist. A storage failure yields the fixed fallback of 100
// instead of an error so account creation is never blocked.
func (s *AccountStore) NextID() int16 {
	var max int16
	err := s.db.QueryRow(`SELECT COALESCE(MAX(id), 0) FROM accounts`).Scan(&max)
	if err != nil {
		return accountIDFallback
	}
	return max + 1
}

// Create validates, allocates an identifier, hashes the password and
// inserts the account. A duplicate email fails with ErrConflict.
func (s *AccountStore) Create(a *models.Account, password string) (*models.Account, error) {
	if err := validateAccount(a); err != nil {
		return nil, err
	}
	if strings.TrimSpace(password) == "" {
		return nil, invalid("password is required")
	}
	taken, err := s.EmailExists(a.Email, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflict("email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	row := s.db.QueryRow(`
		INSERT INTO accounts (id, name, email, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+accountColumns,
		s.NextID(), a.Name, a.Email, a.Role, string(hash),
	)
	result, err := scanAccount(row)
	if err != nil {
		return nil, wrapPg("create account", err)
	}
	return result, nil
}

// Update modifies an account's profile fields. The identity and password
// are immutable here; see ChangePassword.
func (s *AccountStore) Update(a *models.Account) error {
	if err := validateAccount(a); err != nil {
		return err
	}
	taken, err := s.EmailExists(a.Email, &a.ID)
	if err != nil {
		return err
	}
	if taken {
		return conflict("email already exists")
	}

	res, err := s.db.Exec(`
		UPDATE accounts SET name = $1, email = $2, role = $3, updated_at = NOW()
		WHERE id = $4
	`, a.Name, a.Email, a.Role, a.ID)
	if err != nil {
		return wrapPg("update account", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update account: %w", ErrNotFound)
	}
	return nil
}

// Delete removes an account. Fails with ErrConflict while the account
// has authored articles.
func (s *AccountStore) Delete(id int16) error {
	authored, err := s.HasArticles(id)
	if err != nil {
		return err
	}
	if authored {
		return conflict("account has created articles")
	}

	res, err := s.db.Exec(`DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return wrapPg("delete account", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete account: %w", ErrNotFound)
	}
	return nil
}

// HasArticles reports whether the account created any article.
func (s *AccountStore) HasArticles(id int16) (bool, error) {
	var has bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM articles WHERE created_by = $1)`, id,
	).Scan(&has)
	if err != nil {
		return false, fmt.Errorf("account has articles: %w", err)
	}
	return has, nil
}

// EmailExists reports whether another account already uses the email.
// excludeID skips the account being updated.
func (s *AccountStore) EmailExists(email string, excludeID *int16) (bool, error) {
	var exists bool
	var err error
	if excludeID == nil {
		err = s.db.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email,
		).Scan(&exists)
	} else {
		err = s.db.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1 AND id <> $2)`,
			email, *excludeID,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("account email exists: %w", err)
	}
	return exists, nil
}

// Authenticate returns the account matching the email and password,
// nil when the credentials do not match any account.
func (s *AccountStore) Authenticate(email, password string) (*models.Account, error) {
	a, err := s.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if a == nil || !s.CheckPassword(a, password) {
		return nil, nil
	}
	return a, nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (s *AccountStore) CheckPassword(a *models.Account, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// ChangePassword verifies the old password and stores a hash of the new
// one. A wrong old password fails with ErrConflict.
func (s *AccountStore) ChangePassword(id int16, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return invalid("new password is required")
	}

	a, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("change password: %w", ErrNotFound)
	}
	if !s.CheckPassword(a, oldPassword) {
		return conflict("old password does not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.db.Exec(`
		UPDATE accounts SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), id); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// SetTOTPSecret saves the TOTP secret for an account during 2FA setup.
func (s *AccountStore) SetTOTPSecret(id int16, secret string) error {
	if _, err := s.db.Exec(`
		UPDATE accounts SET totp_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, id); err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active after a successful code verification.
func (s *AccountStore) EnableTOTP(id int16) error {
	if _, err := s.db.Exec(`
		UPDATE accounts SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// ResetTOTP clears the TOTP secret and disables 2FA for an account.
func (s *AccountStore) ResetTOTP(id int16) error {
	if _, err := s.db.Exec(`
		UPDATE accounts SET totp_secret = NULL, totp_enabled = FALSE, updated_at = NOW() WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("reset totp: %w", err)
	}
	return nil
}
