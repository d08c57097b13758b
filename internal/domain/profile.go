package domain

import (
	"fmt"
	"strings"
	"time"
)

// Profile identifies an account holder.
type Profile struct {
	FirstName string
	LastName  string
	DOB       Date
}

// HolderKey is the comparable identity of a Profile: case-folded names plus
// the exact date of birth. Two profiles are Equal iff their keys are equal.
type HolderKey struct {
	FirstName string
	LastName  string
	DOB       Date
}

func NewProfile(firstName, lastName string, dob Date) Profile {
	return Profile{
		FirstName: NormalizeHumanName(firstName),
		LastName:  NormalizeHumanName(lastName),
		DOB:       dob,
	}
}

func (p Profile) Key() HolderKey {
	return HolderKey{
		FirstName: foldName(p.FirstName),
		LastName:  foldName(p.LastName),
		DOB:       p.DOB,
	}
}

func (p Profile) Equal(o Profile) bool { return p.Key() == o.Key() }

// Age returns whole years between DOB and now; a birthday not yet reached this
// year does not count.
func (p Profile) Age(now time.Time) int {
	today := DateOf(now)
	age := today.Year - p.DOB.Year
	if today.Month < p.DOB.Month || (today.Month == p.DOB.Month && today.Day < p.DOB.Day) {
		age--
	}
	return age
}

// Compare orders profiles by last name, first name (case-insensitive), then DOB.
func (p Profile) Compare(o Profile) int {
	pk, ok := p.Key(), o.Key()
	if c := strings.Compare(pk.LastName, ok.LastName); c != 0 {
		return c
	}
	if c := strings.Compare(pk.FirstName, ok.FirstName); c != 0 {
		return c
	}
	return p.DOB.Compare(o.DOB)
}

func (p Profile) String() string {
	return fmt.Sprintf("%s %s %s", p.FirstName, p.LastName, p.DOB)
}
