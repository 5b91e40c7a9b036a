package domain

import (
	"fmt"
	"strconv"
)

// FamilyID identifies a product family (shipping category).
// Zero means "no family".
type FamilyID int

// Represents a product category used to decide shipping compatibility.
type Family struct {
	ID   FamilyID
	Name string
}

// RestrictionEdge marks two families as incompatible on the same group or
// route. It is symmetric: the stored direction carries no meaning.
type RestrictionEdge struct {
	A      FamilyID
	B      FamilyID
	AName  string
	BName  string
	Reason string
}

// Touches reports whether the edge connects x and y in either direction.
func (r RestrictionEdge) Touches(x, y FamilyID) bool {
	return (r.A == x && r.B == y) || (r.A == y && r.B == x)
}

// Label renders the pair as "A x B" using names when known.
func (r RestrictionEdge) Label() string {
	return fmt.Sprintf("%s x %s", FamilyLabel(r.A, r.AName), FamilyLabel(r.B, r.BName))
}

// FamilyLabel returns name, or "family <id>" when the name is unknown.
func FamilyLabel(id FamilyID, name string) string {
	if name != "" {
		return name
	}
	return "family " + strconv.Itoa(int(id))
}
