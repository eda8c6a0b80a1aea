package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the wire format for calendar dates (ISO 8601 date only).
const DateFormat = "2006-01-02"

// Date is a calendar date that marshals as "YYYY-MM-DD" instead of RFC 3339.
type Date struct {
	time.Time
}

// NewDate builds a Date from a time, discarding the clock component.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.Format(DateFormat))), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Group represents a dhukuti savings group: a circle of members who
// contribute a fixed amount on a fixed cadence.
type Group struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Frequency   string `json:"frequency"`
	Members     int64  `json:"members"`
	StartDate   Date   `json:"start_date"`
}

// GroupMember is a display entry in a group's member list.
type GroupMember struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// GroupWithMembers is the list-endpoint shape: a group plus its member list.
// The member list is currently placeholder demo data, not real membership.
type GroupWithMembers struct {
	Group
	MembersList []GroupMember `json:"members_list"`
}

// CreateGroupRequest is the payload for group creation. Pointer fields
// distinguish missing keys from zero values so validation can report
// per-field errors.
type CreateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Amount      *int64  `json:"amount"`
	Frequency   *string `json:"frequency"`
	Members     *int64  `json:"members"`
	StartDate   *string `json:"start_date"`
}

// ActivityItem is one entry in the dashboard activity feed.
type ActivityItem struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Img      string `json:"img"`
	Href     string `json:"href"`
}
