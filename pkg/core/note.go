package core

import "strconv"

// ID identifies a persisted note. It is assigned by the Store on first insert
// and never changes afterwards. The zero value means "not yet persisted".
type ID uint64

// String renders the identifier in base 10.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses a base-10 identifier.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// Note is the central entity of the domain.
// It is agnostic to storage format: the colour is a palette member here and
// only becomes a key when it crosses into a Record.
type Note struct {
	ID    ID
	Title string
	Body  string
	Color Color
}

// Identity derives the upsert target of the note at the boundary.
func (n Note) Identity() Identity {
	if n.ID == 0 {
		return NewIdentity()
	}
	return ExistingIdentity(n.ID)
}

// Record is the persisted shape of a note, as seen by a Store.
type Record struct {
	ID       ID
	Title    string
	Body     string
	ColorKey string
}

// ToRecord converts a note into its persisted shape.
func (n Note) ToRecord() Record {
	return Record{
		ID:       n.ID,
		Title:    n.Title,
		Body:     n.Body,
		ColorKey: n.Color.Key(),
	}
}

// ToNote converts a persisted record into the domain model.
// Unknown colour keys resolve to the palette fallback.
func (r Record) ToNote() Note {
	return Note{
		ID:    r.ID,
		Title: r.Title,
		Body:  r.Body,
		Color: ColorFromKey(r.ColorKey),
	}
}
