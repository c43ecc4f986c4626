package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CourseNames is the set of course names a student is registered for.
// Legacy rows store either a single name or a JSON array of names; both
// shapes decode into the same normalised list.
type CourseNames []string

// Normalized returns the trimmed, lower-cased set of course names.
func (c CourseNames) Normalized() map[string]struct{} {
	set := make(map[string]struct{}, len(c))
	for _, name := range c {
		if key := NormalizeCourseName(name); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the normalised target is one of the names.
func (c CourseNames) Contains(target string) bool {
	key := NormalizeCourseName(target)
	if key == "" {
		return false
	}
	_, ok := c.Normalized()[key]
	return ok
}

// NormalizeCourseName trims and lower-cases a course name for comparison.
func NormalizeCourseName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// UnmarshalJSON accepts a string, an array of strings or null.
func (c *CourseNames) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*c = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var many []string
		if err := json.Unmarshal(data, &many); err != nil {
			return fmt.Errorf("decode course list: %w", err)
		}
		*c = compactNames(many)
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("decode course name: %w", err)
	}
	*c = compactNames([]string{one})
	return nil
}

// Scan implements sql.Scanner for the heterogeneous courses column.
func (c *CourseNames) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("unsupported courses column type %T", src)
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		return c.UnmarshalJSON([]byte(trimmed))
	}
	*c = compactNames([]string{raw})
	return nil
}

// Value implements driver.Valuer, always writing the list form.
func (c CourseNames) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	payload, err := json.Marshal([]string(c))
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

func compactNames(names []string) CourseNames {
	out := make(CourseNames, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) != "" {
			out = append(out, name)
		}
	}
	return out
}

// DistinctCourseValues collects the sorted distinct normalised course names seen on a roster.
func DistinctCourseValues(students []Student) []string {
	seen := map[string]struct{}{}
	for _, st := range students {
		for key := range st.Courses.Normalized() {
			seen[key] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for key := range seen {
		values = append(values, key)
	}
	sort.Strings(values)
	return values
}

// Student represents a trainee provided by the roster.
type Student struct {
	ID       string      `db:"id" json:"id"`
	FullName string      `db:"full_name" json:"full_name"`
	Courses  CourseNames `db:"courses" json:"courses"`
	Email    *string     `db:"email" json:"email,omitempty"`
	Phone    *string     `db:"phone" json:"phone,omitempty"`
	BranchID *string     `db:"branch_id" json:"branch_id,omitempty"`
	Active   bool        `db:"active" json:"active"`
}
