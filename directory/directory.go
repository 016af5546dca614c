/*
Package directory authenticates employees against the staff table.

PURPOSE:
  The staff table lists every employee with an account and a password.
  Logging in matches (taiKhoan, matKhau) against it and yields the
  leave.Session every leave operation takes.

COLUMNS:
  maNVYT (employee id), tenNhanVien (name), taiKhoan (account),
  matKhau (password), chucVu (position; "admin" grants the admin role)

PASSWORDS:
  matKhau holds either a bcrypt hash or, on older sheets, the plain
  password. Both are checked without leaking timing.
*/
package directory

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/warp/leave-registry/leave"
	"github.com/warp/leave-registry/sheet"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	ColEmployeeID   = "maNVYT"
	ColEmployeeName = "tenNhanVien"
	ColAccount      = "taiKhoan"
	ColPassword     = "matKhau"
	ColPosition     = "chucVu"
)

// Header is the column order of a new staff table.
var Header = []string{ColEmployeeID, ColEmployeeName, ColAccount, ColPassword, ColPosition}

// ErrInvalidCredentials is returned for an unknown account or a wrong
// password; callers cannot tell which.
var ErrInvalidCredentials = errors.New("invalid account or password")

// Directory reads the staff table.
type Directory struct {
	store sheet.RowStore
	table string
}

func New(store sheet.RowStore, table string) *Directory {
	return &Directory{store: store, table: table}
}

// Employee is one row of the staff table, without the password.
type Employee struct {
	ID       string
	Name     string
	Account  string
	Position string
}

// Authenticate returns the session of the employee owning account if
// password matches.
func (d *Directory) Authenticate(ctx context.Context, account, password string) (leave.Session, error) {
	account = strings.TrimSpace(account)
	if account == "" || password == "" {
		return leave.Session{}, ErrInvalidCredentials
	}

	t, err := d.fetch(ctx)
	if err != nil {
		return leave.Session{}, err
	}

	for i := range t.Rows {
		if strings.TrimSpace(t.Cell(i, ColAccount)) != account {
			continue
		}
		if !passwordMatches(t.Cell(i, ColPassword), password) {
			return leave.Session{}, ErrInvalidCredentials
		}
		e := employeeAt(t, i)
		return leave.Session{
			EmployeeID:   e.ID,
			EmployeeName: e.Name,
			Role:         leave.ParseRole(e.Position),
		}, nil
	}

	// Same cost as a wrong password for an existing account.
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return leave.Session{}, ErrInvalidCredentials
}

// Employees returns every row with an employee id, in table order.
func (d *Directory) Employees(ctx context.Context) ([]Employee, error) {
	t, err := d.fetch(ctx)
	if err != nil {
		return nil, err
	}
	var out []Employee
	for i := range t.Rows {
		if e := employeeAt(t, i); e.ID != "" {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListNames returns the distinct employee names in Vietnamese
// alphabetical order.
func (d *Directory) ListNames(ctx context.Context) ([]string, error) {
	employees, err := d.Employees(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	names := make([]string, 0, len(employees))
	for _, e := range employees {
		if e.Name == "" || seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		names = append(names, e.Name)
	}
	collate.New(language.Vietnamese).SortStrings(names)
	return names, nil
}

func (d *Directory) fetch(ctx context.Context) (sheet.Table, error) {
	t, err := d.store.FetchAll(ctx, d.table)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("%w: %w", leave.ErrStoreReadFailed, err)
	}
	return t, nil
}

func employeeAt(t sheet.Table, row int) Employee {
	return Employee{
		ID:       strings.TrimSpace(t.Cell(row, ColEmployeeID)),
		Name:     strings.TrimSpace(t.Cell(row, ColEmployeeName)),
		Account:  strings.TrimSpace(t.Cell(row, ColAccount)),
		Position: strings.TrimSpace(t.Cell(row, ColPosition)),
	}
}

// =============================================================================
// PASSWORDS
// =============================================================================

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("leave-registry"), bcrypt.DefaultCost)

// HashPassword returns the bcrypt hash to store in matKhau.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func passwordMatches(stored, given string) bool {
	stored = strings.TrimSpace(stored)
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
