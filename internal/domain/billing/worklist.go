package billing

import (
	"sort"
	"strings"
	"time"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// WorklistPageSize is the fixed page size of the pending-balance worklist
const WorklistPageSize = 20

// BalanceBucket is a coarse classification of a pending balance
type BalanceBucket string

const (
	BalanceBucketAll    BalanceBucket = "all"
	BalanceBucketSmall  BalanceBucket = "small"  // <= 1000
	BalanceBucketMedium BalanceBucket = "medium" // > 1000 and <= 3000
	BalanceBucketHigh   BalanceBucket = "high"   // > 3000
)

var (
	bucketSmallLimit  = decimal.NewFromInt(1000)
	bucketMediumLimit = decimal.NewFromInt(3000)
)

// ParseBalanceBucket maps raw to a bucket, defaulting to all
func ParseBalanceBucket(raw string) BalanceBucket {
	switch b := BalanceBucket(strings.ToLower(strings.TrimSpace(raw))); b {
	case BalanceBucketSmall, BalanceBucketMedium, BalanceBucketHigh:
		return b
	}
	return BalanceBucketAll
}

// Matches reports whether balance falls in the bucket
func (b BalanceBucket) Matches(balance decimal.Decimal) bool {
	switch b {
	case BalanceBucketSmall:
		return balance.LessThanOrEqual(bucketSmallLimit)
	case BalanceBucketMedium:
		return balance.GreaterThan(bucketSmallLimit) && balance.LessThanOrEqual(bucketMediumLimit)
	case BalanceBucketHigh:
		return balance.GreaterThan(bucketMediumLimit)
	}
	return true
}

// OverdueFilter restricts the worklist by days overdue
type OverdueFilter string

const (
	OverdueFilterAll    OverdueFilter = "all"
	OverdueFilterAny    OverdueFilter = "overdue"
	OverdueFilter7Plus  OverdueFilter = "7plus"
	OverdueFilter30Plus OverdueFilter = "30plus"
)

// ParseOverdueFilter maps raw to a filter, defaulting to all
func ParseOverdueFilter(raw string) OverdueFilter {
	switch f := OverdueFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case OverdueFilterAny, OverdueFilter7Plus, OverdueFilter30Plus:
		return f
	}
	return OverdueFilterAll
}

// Matches reports whether overdueDays satisfies the filter
func (f OverdueFilter) Matches(overdueDays int) bool {
	switch f {
	case OverdueFilterAny:
		return overdueDays > 0
	case OverdueFilter7Plus:
		return overdueDays >= 7
	case OverdueFilter30Plus:
		return overdueDays >= 30
	}
	return true
}

// WorklistFilter holds the caller's worklist criteria
type WorklistFilter struct {
	Query    string
	CampusID *uuid.UUID
	TeamID   *uuid.UUID
	Bucket   BalanceBucket
	Overdue  OverdueFilter
	Page     int
}

// NormalizedPage returns the 1-based page, at least 1
func (f WorklistFilter) NormalizedPage() int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

// WorklistRow is one enrollment with an outstanding balance
type WorklistRow struct {
	EnrollmentID uuid.UUID       `json:"enrollment_id"`
	PlayerName   string          `json:"player_name"`
	CampusName   string          `json:"campus_name"`
	CampusCode   string          `json:"campus_code"`
	TeamID       *uuid.UUID      `json:"team_id"`
	TeamName     string          `json:"team_name"`
	PrimaryPhone *string         `json:"primary_phone"`
	Balance      decimal.Decimal `json:"balance"`
	DueDate      *time.Time      `json:"due_date"`
	OverdueDays  int             `json:"overdue_days"`
}

// WorklistInput is everything the engine needs to build rows. Enrollments
// must already be restricted to active ones in the requested campus.
type WorklistInput struct {
	Balances    map[uuid.UUID]decimal.Decimal
	Enrollments []Enrollment
	Guardians   []GuardianContact
	Teams       []TeamAssignment
	DueDates    []DueDate
	Today       time.Time
}

const missingLabel = "-"

// PrimaryPhone picks the primary guardian's phone, else the first guardian
// with any phone, else nil
func PrimaryPhone(contacts []GuardianContact) *string {
	for _, c := range contacts {
		if c.IsPrimary && c.Phone != "" {
			phone := c.Phone
			return &phone
		}
	}
	for _, c := range contacts {
		if c.Phone != "" {
			phone := c.Phone
			return &phone
		}
	}
	return nil
}

// EarliestDueDates keeps the earliest due date per enrollment
func EarliestDueDates(dueDates []DueDate) map[uuid.UUID]time.Time {
	earliest := make(map[uuid.UUID]time.Time)
	for _, d := range dueDates {
		if existing, ok := earliest[d.EnrollmentID]; !ok || d.DueDate.Before(existing) {
			earliest[d.EnrollmentID] = d.DueDate
		}
	}
	return earliest
}

// BuildWorklistRows resolves phone, team and overdue days per enrollment
func BuildWorklistRows(in WorklistInput) []WorklistRow {
	guardiansByPlayer := make(map[uuid.UUID][]GuardianContact)
	for _, g := range in.Guardians {
		guardiansByPlayer[g.PlayerID] = append(guardiansByPlayer[g.PlayerID], g)
	}
	teamByEnrollment := make(map[uuid.UUID]TeamAssignment)
	for _, t := range in.Teams {
		if _, ok := teamByEnrollment[t.EnrollmentID]; !ok {
			teamByEnrollment[t.EnrollmentID] = t
		}
	}
	earliest := EarliestDueDates(in.DueDates)

	rows := make([]WorklistRow, 0, len(in.Enrollments))
	for _, e := range in.Enrollments {
		row := WorklistRow{
			EnrollmentID: e.ID,
			PlayerName:   strings.TrimSpace(e.PlayerName),
			CampusName:   orMissing(e.CampusName),
			CampusCode:   orMissing(e.CampusCode),
			TeamName:     missingLabel,
			PrimaryPhone: PrimaryPhone(guardiansByPlayer[e.PlayerID]),
			Balance:      RoundMoney(in.Balances[e.ID]),
		}
		if team, ok := teamByEnrollment[e.ID]; ok {
			teamID := team.TeamID
			row.TeamID = &teamID
			row.TeamName = orMissing(team.TeamName)
		}
		if due, ok := earliest[e.ID]; ok {
			dueDate := due
			row.DueDate = &dueDate
		}
		row.OverdueDays = OverdueDays(in.Today, row.DueDate)
		rows = append(rows, row)
	}
	return rows
}

// Matches applies the team, bucket, overdue and text criteria to a row
func (f WorklistFilter) Matches(row WorklistRow) bool {
	if f.TeamID != nil && (row.TeamID == nil || *row.TeamID != *f.TeamID) {
		return false
	}
	if !f.Bucket.Matches(row.Balance) {
		return false
	}
	if !f.Overdue.Matches(row.OverdueDays) {
		return false
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))
	if query == "" {
		return true
	}
	phone := ""
	if row.PrimaryPhone != nil {
		phone = *row.PrimaryPhone
	}
	haystack := strings.ToLower(row.PlayerName + " " + phone + " " + row.TeamName)
	return strings.Contains(haystack, query)
}

// SortWorklist orders rows by balance desc, overdue days desc, name asc.
// Names are compared with Spanish collation so accented names sort naturally.
func SortWorklist(rows []WorklistRow) {
	collator := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].Balance.Cmp(rows[j].Balance); c != 0 {
			return c > 0
		}
		if rows[i].OverdueDays != rows[j].OverdueDays {
			return rows[i].OverdueDays > rows[j].OverdueDays
		}
		if c := collator.CompareString(rows[i].PlayerName, rows[j].PlayerName); c != 0 {
			return c < 0
		}
		return rows[i].EnrollmentID.String() < rows[j].EnrollmentID.String()
	})
}

// BuildWorklist filters, sorts and paginates. Total counts the whole
// filtered set regardless of page.
func BuildWorklist(in WorklistInput, filter WorklistFilter) shared.Paginated[WorklistRow] {
	rows := BuildWorklistRows(in)
	filtered := make([]WorklistRow, 0, len(rows))
	for _, row := range rows {
		if filter.Matches(row) {
			filtered = append(filtered, row)
		}
	}
	SortWorklist(filtered)
	return shared.Paginate(filtered, filter.NormalizedPage(), WorklistPageSize)
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return missingLabel
	}
	return s
}
