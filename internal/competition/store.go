package competition

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrEmptyImport is returned by ReplaceAll when no row carries a name.
	ErrEmptyImport = errors.New("no valid distributor data found")

	ErrUnknownField = errors.New("unknown field")
)

// Store is the mutable collection of distributor records. It is not safe for
// concurrent use; callers serialise access (see session.Session).
type Store struct {
	records []DistributorRecord
	newID   func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDGenerator overrides how record ids are minted. Generated ids must
// never repeat.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newID = fn
	}
}

// NewStore creates an empty store. Ids are time-ordered UUIDs, so records
// created in one batch get ids in creation order.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{newID: newRecordID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Records returns a copy of the collection in order.
func (s *Store) Records() []DistributorRecord {
	out := make([]DistributorRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Len() int {
	return len(s.records)
}

// Get looks up a record by id.
func (s *Store) Get(id string) (DistributorRecord, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.records[i], true
	}
	return DistributorRecord{}, false
}

// IsPristine reports whether the store still holds only the placeholder
// record a session starts with.
func (s *Store) IsPristine() bool {
	return len(s.records) == 0 ||
		(len(s.records) == 1 && s.records[0].Name == DefaultDistributorName)
}

// Add appends a record with blank tallies. A blank or whitespace-only name is
// ignored and reported as not added.
func (s *Store) Add(name string) (DistributorRecord, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DistributorRecord{}, false
	}

	r := DistributorRecord{ID: s.newID(), Name: name}
	s.records = append(s.records, r)
	return r, true
}

// BulkAdd appends one record per non-blank line of text, in order. Duplicate
// names are kept.
func (s *Store) BulkAdd(text string) []DistributorRecord {
	var added []DistributorRecord
	for _, line := range strings.Split(text, "\n") {
		if r, ok := s.Add(line); ok {
			added = append(added, r)
		}
	}
	return added
}

// Remove deletes the record with the given id. Unknown ids are ignored.
func (s *Store) Remove(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return true
}

// Update replaces one field of a record. Names are stored verbatim, so they
// may become empty or duplicate another record. Tallies go through
// ParseCount and never fail. It reports whether a record was changed; an
// unknown id is not an error.
func (s *Store) Update(id string, field Field, value string) (bool, error) {
	field, err := ParseField(string(field))
	if err != nil {
		return false, err
	}

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}

	r := &s.records[i]
	switch field {
	case FieldName:
		r.Name = value
	case FieldActivities:
		r.Activities = ParseCount(value)
	case FieldAMHSold:
		r.AMHSold = ParseCount(value)
	case FieldURUSSold:
		r.URUSSold = ParseCount(value)
	}
	return true, nil
}

// ReplaceAll swaps in an entirely new collection, as an import does. Rows
// with a blank name are dropped and names are trimmed; every surviving row
// gets a fresh id. When nothing survives the store is left untouched and
// ErrEmptyImport is returned.
func (s *Store) ReplaceAll(rows []DistributorRecord) ([]DistributorRecord, error) {
	next := make([]DistributorRecord, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}
		next = append(next, DistributorRecord{
			ID:         s.newID(),
			Name:       name,
			Activities: row.Activities,
			AMHSold:    row.AMHSold,
			URUSSold:   row.URUSSold,
		})
	}

	if len(next) == 0 {
		return nil, ErrEmptyImport
	}

	s.records = next
	return s.Records(), nil
}

func (s *Store) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
