// Package model contains domain models passed between layers.
package model

import (
	"slices"
	"time"
)

// Provider is one catalog entry. Values are immutable after decoding; the
// exported fields are exactly the public attribute set returned to clients.
type Provider struct {
	ID             int      `json:"id"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Sex            string   `json:"sex"`
	BirthDate      string   `json:"birth_date"` // ISO date, YYYY-MM-DD
	Rating         float64  `json:"rating"`     // 0..5
	PrimarySkills  []string `json:"primary_skills"`
	SecondarySkill []string `json:"secondary_skill"`
	Company        string   `json:"company"`
	Active         bool     `json:"active"`
	Country        string   `json:"country"`
	Language       string   `json:"language"`

	born time.Time
}

// Born returns the parsed birth date.
func (p Provider) Born() time.Time { return p.born }

// Age returns the provider's age in whole years on the given day.
func (p Provider) Age(today time.Time) int { return AgeFrom(p.born, today) }

// Clone returns a copy that shares no slices with p.
func (p Provider) Clone() Provider {
	c := p
	c.PrimarySkills = slices.Clone(p.PrimarySkills)
	c.SecondarySkill = slices.Clone(p.SecondarySkill)
	return c
}

// AgeFrom computes completed years between birthDate and today. Only the
// calendar dates matter; clock time and location of today are ignored.
func AgeFrom(birthDate, today time.Time) int {
	age := today.Year() - birthDate.Year()
	if today.Month() < birthDate.Month() ||
		(today.Month() == birthDate.Month() && today.Day() < birthDate.Day()) {
		age--
	}
	return age
}
