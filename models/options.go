package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

type Strength string

const (
	StrengthLight  Strength = "light"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

func (s Strength) Valid() bool {
	switch s {
	case StrengthLight, StrengthMedium, StrengthStrong:
		return true
	}
	return false
}

type Therapist string

const (
	TherapistRandom Therapist = "random"
	TherapistMale   Therapist = "male"
	TherapistFemale Therapist = "female"
)

func (t Therapist) Valid() bool {
	switch t {
	case TherapistRandom, TherapistMale, TherapistFemale:
		return true
	}
	return false
}

type Area string

const (
	AreaHead      Area = "head"
	AreaNeck      Area = "neck"
	AreaShoulders Area = "shoulders"
	AreaBack      Area = "back"
	AreaArms      Area = "arms"
	AreaHands     Area = "hands"
	AreaLegs      Area = "legs"
	AreaFeet      Area = "feet"

	// Sentinels accepted by the customization toggle only
	AreaFullBody Area = "full_body"
	AreaClearAll Area = "clear_all"
)

// AllAreas in display order
var AllAreas = []Area{AreaHead, AreaNeck, AreaShoulders, AreaBack, AreaArms, AreaHands, AreaLegs, AreaFeet}

func (a Area) Valid() bool {
	for _, known := range AllAreas {
		if a == known {
			return true
		}
	}
	return false
}

type Tag string

const (
	TagPregnant Tag = "pregnant"
	TagAllergy  Tag = "allergy"
)

func (t Tag) Valid() bool {
	return t == TagPregnant || t == TagAllergy
}

// Options is the per-line customization bundle. Its JSON form is the
// options snapshot persisted with every booking line.
type Options struct {
	Strength  Strength  `json:"strength"`
	Therapist Therapist `json:"therapist"`
	Focus     []Area    `json:"focus"`
	Avoid     []Area    `json:"avoid"`
	Tags      []Tag     `json:"tags"`
	Note      string    `json:"note"`
}

func DefaultOptions() Options {
	return Options{
		Strength:  StrengthMedium,
		Therapist: TherapistRandom,
		Focus:     []Area{},
		Avoid:     []Area{},
		Tags:      []Tag{},
	}
}

// Normalize fills defaults, drops unknown values and duplicates, and keeps
// focus and avoid disjoint. An area listed in both stays in avoid.
func (o Options) Normalize() Options {
	out := Options{
		Strength:  o.Strength,
		Therapist: o.Therapist,
		Note:      strings.TrimSpace(o.Note),
	}
	if !out.Strength.Valid() {
		out.Strength = StrengthMedium
	}
	if !out.Therapist.Valid() {
		out.Therapist = TherapistRandom
	}
	out.Avoid = uniqueAreas(o.Avoid, nil)
	out.Focus = uniqueAreas(o.Focus, out.Avoid)

	out.Tags = make([]Tag, 0, len(o.Tags))
	seen := map[Tag]bool{}
	for _, t := range o.Tags {
		if t.Valid() && !seen[t] {
			seen[t] = true
			out.Tags = append(out.Tags, t)
		}
	}
	return out
}

func (o Options) HasTag(t Tag) bool {
	for _, x := range o.Tags {
		if x == t {
			return true
		}
	}
	return false
}

func (o Options) Value() (driver.Value, error) {
	return json.Marshal(o.Normalize())
}

func (o *Options) Scan(value interface{}) error {
	if err := scanJSON(value, o); err != nil {
		return err
	}
	*o = o.Normalize()
	return nil
}

// OptionsPatch carries a partial update; nil fields keep their prior value
type OptionsPatch struct {
	Strength  *Strength  `json:"strength,omitempty" binding:"omitempty,strength"`
	Therapist *Therapist `json:"therapist,omitempty" binding:"omitempty,therapist"`
	Focus     *[]Area    `json:"focus,omitempty"`
	Avoid     *[]Area    `json:"avoid,omitempty"`
	Tags      *[]Tag     `json:"tags,omitempty"`
	Note      *string    `json:"note,omitempty"`
}

// Apply merges the patch into o. When only one of focus/avoid is given the
// newly listed areas are removed from the other list.
func (p OptionsPatch) Apply(o Options) Options {
	if p.Strength != nil {
		o.Strength = *p.Strength
	}
	if p.Therapist != nil {
		o.Therapist = *p.Therapist
	}
	if p.Tags != nil {
		o.Tags = append([]Tag(nil), (*p.Tags)...)
	}
	if p.Note != nil {
		o.Note = *p.Note
	}
	switch {
	case p.Focus != nil && p.Avoid != nil:
		o.Focus = append([]Area(nil), (*p.Focus)...)
		o.Avoid = append([]Area(nil), (*p.Avoid)...)
	case p.Focus != nil:
		o.Focus = append([]Area(nil), (*p.Focus)...)
		o.Avoid = uniqueAreas(o.Avoid, o.Focus)
	case p.Avoid != nil:
		o.Avoid = append([]Area(nil), (*p.Avoid)...)
		o.Focus = uniqueAreas(o.Focus, o.Avoid)
	}
	return o.Normalize()
}

func uniqueAreas(in []Area, exclude []Area) []Area {
	out := make([]Area, 0, len(in))
	seen := map[Area]bool{}
	for _, a := range exclude {
		seen[a] = true
	}
	for _, a := range in {
		if a.Valid() && !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}
