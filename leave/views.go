package leave

import (
	"sort"
	"strings"
)

// =============================================================================
// VIEWS - Read-only selections over a snapshot
// =============================================================================
//
// Every view returns a new slice ordered by requested date, then storage
// position. Active views never include cancelled records.

// ActiveInRange returns the active records requested within period.
func ActiveInRange(records []Record, period Period) []Record {
	return selectSorted(records, func(r Record) bool {
		return r.IsActive() && !r.RequestedDate.IsZero() && period.Contains(r.RequestedDate)
	})
}

// PendingInRange returns the records awaiting a decision within period.
func PendingInRange(records []Record, period Period) []Record {
	return selectSorted(records, func(r Record) bool {
		return r.IsPending() && !r.RequestedDate.IsZero() && period.Contains(r.RequestedDate)
	})
}

// ApprovedActive returns approved, not cancelled records. A non-empty
// employeeName keeps only that employee's records.
func ApprovedActive(records []Record, employeeName string) []Record {
	name := strings.TrimSpace(employeeName)
	return selectSorted(records, func(r Record) bool {
		return r.IsApproved() && (name == "" || strings.EqualFold(r.EmployeeName, name))
	})
}

// OwnedBy returns every record of employeeID, cancelled ones included.
func OwnedBy(records []Record, employeeID string) []Record {
	return selectSorted(records, func(r Record) bool {
		return r.EmployeeID == employeeID
	})
}

// FindRow returns the record stored at row.
func FindRow(records []Record, row int) (Record, bool) {
	for _, r := range records {
		if r.Row == row {
			return r, true
		}
	}
	return Record{}, false
}

func selectSorted(records []Record, keep func(Record) bool) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	sortByDate(out)
	return out
}

func sortByDate(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.RequestedDate.Equal(b.RequestedDate) {
			return a.RequestedDate.Before(b.RequestedDate)
		}
		return a.Row < b.Row
	})
}
