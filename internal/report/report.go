// Package report runs the read-only aggregate queries behind the
// dashboards and renders inventory exports. The admin and employee
// views run the same queries; the employee scope just adds a
// created_by filter.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmatrack/domain"
)

// Scope restricts aggregates to one user's records. The zero value is
// the full-system (admin) view.
type Scope struct {
	CreatedBy string
}

// Summary holds the dashboard headline numbers.
type Summary struct {
	TotalRecords       int
	RecentAdditions    int // last 7 days
	ExpiringSoon       int // next 30 days, not yet expired
	Expired            int
	TotalPurchaseValue float64
}

// TypeCount is one slice of the by-type distribution.
type TypeCount struct {
	InventoryType string `db:"inventory_type"`
	Count         int    `db:"count"`
}

// DateCount is one day of the additions chart.
type DateCount struct {
	Date  string
	Count int
}

// UserCount is one row of the per-employee activity table.
type UserCount struct {
	CreatedBy string `db:"created_by"`
	Count     int    `db:"count"`
}

type Reports struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func New(db *sqlx.DB, logger *slog.Logger) *Reports {
	return &Reports{db: db, logger: logger.With(slog.String("component", "reports"))}
}

func (r *Reports) scopeClause(scope Scope, args *[]any) string {
	if scope.CreatedBy == "" {
		return ""
	}
	*args = append(*args, scope.CreatedBy)
	return " AND created_by = ?"
}

// Summary computes the headline numbers for one scope.
func (r *Reports) Summary(ctx context.Context, scope Scope) (Summary, error) {
	var s Summary
	now := time.Now()
	today := now.Format(domain.DateLayout)
	weekAgo := now.AddDate(0, 0, -7).Format(domain.DateLayout)
	monthAhead := now.AddDate(0, 0, 30).Format(domain.DateLayout)

	count := func(dest any, query string, args ...any) error {
		return r.db.GetContext(ctx, dest, r.db.Rebind(query), args...)
	}

	var args []any
	clause := r.scopeClause(scope, &args)
	if err := count(&s.TotalRecords, `SELECT COUNT(*) FROM inventory WHERE 1=1`+clause, args...); err != nil {
		return s, fmt.Errorf("count records: %w", err)
	}

	args = []any{weekAgo}
	clause = r.scopeClause(scope, &args)
	if err := count(&s.RecentAdditions, `SELECT COUNT(*) FROM inventory WHERE created_at >= ?`+clause, args...); err != nil {
		return s, fmt.Errorf("count recent additions: %w", err)
	}

	args = []any{today, monthAhead}
	clause = r.scopeClause(scope, &args)
	if err := count(&s.ExpiringSoon,
		`SELECT COUNT(*) FROM inventory WHERE expiration_date <> '' AND expiration_date > ? AND expiration_date <= ?`+clause,
		args...); err != nil {
		return s, fmt.Errorf("count expiring: %w", err)
	}

	args = []any{today}
	clause = r.scopeClause(scope, &args)
	if err := count(&s.Expired,
		`SELECT COUNT(*) FROM inventory WHERE expiration_date <> '' AND expiration_date <= ?`+clause,
		args...); err != nil {
		return s, fmt.Errorf("count expired: %w", err)
	}

	args = nil
	clause = r.scopeClause(scope, &args)
	if err := count(&s.TotalPurchaseValue,
		`SELECT COALESCE(SUM(purchase_price), 0) FROM inventory WHERE 1=1`+clause, args...); err != nil {
		return s, fmt.Errorf("sum purchase value: %w", err)
	}

	return s, nil
}

// ByType returns the record distribution over inventory types.
func (r *Reports) ByType(ctx context.Context, scope Scope) ([]TypeCount, error) {
	var args []any
	clause := r.scopeClause(scope, &args)
	var counts []TypeCount
	err := r.db.SelectContext(ctx, &counts, r.db.Rebind(
		`SELECT inventory_type, COUNT(*) AS count FROM inventory WHERE inventory_type <> ''`+clause+
			` GROUP BY inventory_type ORDER BY count DESC`), args...)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	return counts, nil
}

// DailyAdditions buckets record creations per day over the trailing
// window. Bucketing happens in Go because the two SQL dialects have no
// shared date-truncation function.
func (r *Reports) DailyAdditions(ctx context.Context, scope Scope, days int) ([]DateCount, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days).Format(domain.DateLayout)

	args := []any{cutoff}
	clause := r.scopeClause(scope, &args)
	var stamps []string
	err := r.db.SelectContext(ctx, &stamps, r.db.Rebind(
		`SELECT created_at FROM inventory WHERE created_at >= ?`+clause), args...)
	if err != nil {
		return nil, fmt.Errorf("load creation dates: %w", err)
	}

	buckets := make(map[string]int)
	for _, stamp := range stamps {
		if len(stamp) >= 10 {
			buckets[stamp[:10]]++
		}
	}
	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	counts := make([]DateCount, len(dates))
	for i, date := range dates {
		counts[i] = DateCount{Date: date, Count: buckets[date]}
	}
	return counts, nil
}

// EmployeeActivity returns record counts per creator; admin view only.
func (r *Reports) EmployeeActivity(ctx context.Context) ([]UserCount, error) {
	var counts []UserCount
	err := r.db.SelectContext(ctx, &counts,
		`SELECT created_by, COUNT(*) AS count FROM inventory WHERE created_by <> '' GROUP BY created_by ORDER BY count DESC`)
	if err != nil {
		return nil, fmt.Errorf("count employee activity: %w", err)
	}
	return counts, nil
}

// FormatCurrency renders a dollar amount the way the UI shows it.
func FormatCurrency(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	// Insert thousands separators into the integer part.
	dot := strings.Index(s, ".")
	intPart := s[:dot]
	for i := len(intPart) - 3; i > 0; i -= 3 {
		intPart = intPart[:i] + "," + intPart[i:]
	}
	return "$" + intPart + s[dot:]
}
