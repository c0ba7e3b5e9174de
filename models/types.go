// ABOUTME: Data models for the contacts dashboard
// ABOUTME: Defines Contact, Tag, Pagination, Sort, SearchCriteria and ContactsPage
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

// Tag is the fixed category a contact belongs to.
type Tag string

const (
	TagFriend Tag = "Friend"
	TagFamily Tag = "Family"
	TagWork   Tag = "Work"
	TagOther  Tag = "Other"
)

// Tags lists every valid tag in display order.
var Tags = []Tag{TagFriend, TagFamily, TagWork, TagOther}

// DefaultTag is preselected on new contact forms.
const DefaultTag = TagOther

var ErrUnknownTag = errors.New("unknown tag")

// Valid reports whether t is one of the fixed tags.
func (t Tag) Valid() bool {
	for _, known := range Tags {
		if t == known {
			return true
		}
	}
	return false
}

func (t Tag) String() string {
	return string(t)
}

// ParseTag resolves user input to a Tag, ignoring case and surrounding space.
// Unknown input returns ErrUnknownTag with the closest known tag as a hint.
func ParseTag(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	for _, known := range Tags {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w %q (did you mean %s?)", ErrUnknownTag, s, SuggestTag(s))
}

// SuggestTag returns the tag with the smallest edit distance to s.
func SuggestTag(s string) Tag {
	best := DefaultTag
	bestDist := -1
	for _, known := range Tags {
		dist := levenshtein.ComputeDistance(strings.ToLower(s), strings.ToLower(string(known)))
		if bestDist < 0 || dist < bestDist {
			best, bestDist = known, dist
		}
	}
	return best
}

// Timestamp decodes both RFC 3339 values and the zone-less local date-times
// the contacts server emits (e.g. 2024-03-01T09:30:00.123).
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Contact is a person record. ID is zero until the server assigns one.
type Contact struct {
	ID        int64      `json:"id,omitempty"`
	Name      string     `json:"name" validate:"required"`
	Email     string     `json:"email" validate:"required,contactemail"`
	Phone     string     `json:"phone" validate:"required"`
	Tag       Tag        `json:"tags" validate:"contacttag"`
	Notes     string     `json:"notes"`
	CreatedOn *Timestamp `json:"createdOn,omitempty"`
}

// HasID reports whether the server has assigned an id.
func (c Contact) HasID() bool {
	return c.ID > 0
}

// Normalized returns a copy with surrounding whitespace trimmed from text fields.
func (c Contact) Normalized() Contact {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Notes = strings.TrimSpace(c.Notes)
	return c
}

// Clone returns a deep copy.
func (c Contact) Clone() Contact {
	if c.CreatedOn != nil {
		ts := *c.CreatedOn
		c.CreatedOn = &ts
	}
	return c
}

// CloneContacts deep-copies a contact slice. A nil slice stays nil.
func CloneContacts(contacts []Contact) []Contact {
	if contacts == nil {
		return nil
	}
	out := make([]Contact, len(contacts))
	for i, c := range contacts {
		out[i] = c.Clone()
	}
	return out
}

// ContactsPage is one page of the paginated contact listing.
type ContactsPage struct {
	Contacts   []Contact `json:"contacts"`
	TotalPages int       `json:"totalPages,omitempty"`
	Total      int       `json:"total,omitempty"`
}

// SortField is a column the server can order contacts by.
type SortField string

const (
	SortByID   SortField = "id"
	SortByName SortField = "name"
)

func ParseSortField(s string) (SortField, error) {
	switch SortField(strings.ToLower(strings.TrimSpace(s))) {
	case SortByID:
		return SortByID, nil
	case SortByName:
		return SortByName, nil
	}
	return "", fmt.Errorf("invalid sort field %q (use id or name)", s)
}

// Direction is a sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", fmt.Errorf("invalid sort direction %q (use asc or desc)", s)
}

// Sort is the active ordering of the contact list.
type Sort struct {
	Field     SortField `json:"sortBy"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by id ascending.
var DefaultSort = Sort{Field: SortByID, Direction: Ascending}

// Toggle returns the ordering produced by clicking a column header:
// the same field flips direction, a new field starts ascending.
func (s Sort) Toggle(field SortField) Sort {
	if s.Field == field && s.Direction == Ascending {
		return Sort{Field: field, Direction: Descending}
	}
	return Sort{Field: field, Direction: Ascending}
}

// SearchMode classifies a SearchCriteria by the endpoint that serves it.
type SearchMode int

const (
	SearchNone SearchMode = iota
	SearchName
	SearchPhone
	SearchTag
	SearchAdvanced
)

func (m SearchMode) String() string {
	switch m {
	case SearchName:
		return "name"
	case SearchPhone:
		return "phone"
	case SearchTag:
		return "tag"
	case SearchAdvanced:
		return "advanced"
	}
	return "none"
}

// SearchCriteria holds optional filters. A single name, phone or tag filter is a
// simple search; name, tag and notes together form an advanced search.
type SearchCriteria struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Tag   Tag    `json:"tag,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func (c SearchCriteria) IsEmpty() bool {
	return c.Mode() == SearchNone
}

// Mode reports which search endpoint serves these criteria.
func (c SearchCriteria) Mode() SearchMode {
	name := strings.TrimSpace(c.Name) != ""
	phone := strings.TrimSpace(c.Phone) != ""
	tag := c.Tag != ""
	notes := strings.TrimSpace(c.Notes) != ""

	set := 0
	for _, b := range []bool{name, phone, tag, notes} {
		if b {
			set++
		}
	}

	switch {
	case set == 0:
		return SearchNone
	case set == 1 && name:
		return SearchName
	case set == 1 && phone:
		return SearchPhone
	case set == 1 && tag:
		return SearchTag
	}
	return SearchAdvanced
}
