package core

import "fmt"

// Identity tells an upsert whether it targets a fresh row or an existing one.
// It replaces the "id == 0" convention with an explicit choice.
type Identity struct {
	id       ID
	existing bool
}

// NewIdentity targets a row that does not exist yet.
func NewIdentity() Identity {
	return Identity{}
}

// ExistingIdentity targets the row with the given id.
// A zero id is treated as new, since the Store never assigns it.
func ExistingIdentity(id ID) Identity {
	if id == 0 {
		return Identity{}
	}
	return Identity{id: id, existing: true}
}

// Existing returns the bound id and true, or zero and false for a new target.
func (i Identity) Existing() (ID, bool) {
	return i.id, i.existing
}

// IsNew reports whether no identifier is bound.
func (i Identity) IsNew() bool {
	return !i.existing
}

// ID returns the bound identifier, or zero when new.
func (i Identity) ID() ID {
	return i.id
}

func (i Identity) String() string {
	if !i.existing {
		return "new"
	}
	return fmt.Sprintf("existing(%d)", i.id)
}
