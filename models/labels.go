package models

import "strings"

// Display labels for option values. Persisted snapshots keep the raw enum
// values; these tables are applied only when rendering for a language.
var optionLabels = map[string]map[string]string{
	"en": {
		string(StrengthLight):   "Light",
		string(StrengthMedium):  "Medium",
		string(StrengthStrong):  "Strong",
		string(TherapistRandom): "Any",
		string(TherapistMale):   "Male",
		string(TherapistFemale): "Female",
		string(AreaHead):        "Head",
		string(AreaNeck):        "Neck",
		string(AreaShoulders):   "Shoulders",
		string(AreaBack):        "Back",
		string(AreaArms):        "Arms",
		string(AreaHands):       "Hands",
		string(AreaLegs):        "Legs",
		string(AreaFeet):        "Feet",
		string(TagPregnant):     "Pregnant",
		string(TagAllergy):      "Allergy",
	},
	"vi": {
		string(StrengthLight):   "Nhẹ",
		string(StrengthMedium):  "Vừa",
		string(StrengthStrong):  "Mạnh",
		string(TherapistRandom): "Ngẫu nhiên",
		string(TherapistMale):   "Nam",
		string(TherapistFemale): "Nữ",
		string(AreaHead):        "Đầu",
		string(AreaNeck):        "Cổ",
		string(AreaShoulders):   "Vai",
		string(AreaBack):        "Lưng",
		string(AreaArms):        "Tay",
		string(AreaHands):       "Bàn tay",
		string(AreaLegs):        "Chân",
		string(AreaFeet):        "Bàn chân",
		string(TagPregnant):     "Mang thai",
		string(TagAllergy):      "Dị ứng",
	},
}

// SupportedLangs lists languages with option label tables
func SupportedLangs() []string {
	return []string{"en", "vi"}
}

// Label renders a raw option value in lang, falling back to English
func Label(lang, value string) string {
	if t, ok := optionLabels[lang]; ok {
		if l, ok := t[value]; ok {
			return l
		}
	}
	if l, ok := optionLabels[DefaultLang][value]; ok {
		return l
	}
	return value
}

// Unlabel maps a display label in any supported language back to its raw value.
// Values that already are raw enums are returned unchanged.
func Unlabel(label string) (string, bool) {
	needle := strings.TrimSpace(label)
	for _, t := range optionLabels {
		if _, ok := t[strings.ToLower(needle)]; ok {
			return strings.ToLower(needle), true
		}
		for raw, l := range t {
			if strings.EqualFold(l, needle) {
				return raw, true
			}
		}
	}
	return "", false
}

// LocalizedOptions is the read-time rendering of an options snapshot
type LocalizedOptions struct {
	Strength  string   `json:"strength"`
	Therapist string   `json:"therapist"`
	Focus     []string `json:"focus"`
	Avoid     []string `json:"avoid"`
	Tags      []string `json:"tags"`
	Note      string   `json:"note"`
}

func (o Options) Localize(lang string) LocalizedOptions {
	out := LocalizedOptions{
		Strength:  Label(lang, string(o.Strength)),
		Therapist: Label(lang, string(o.Therapist)),
		Focus:     make([]string, 0, len(o.Focus)),
		Avoid:     make([]string, 0, len(o.Avoid)),
		Tags:      make([]string, 0, len(o.Tags)),
		Note:      o.Note,
	}
	for _, a := range o.Focus {
		out.Focus = append(out.Focus, Label(lang, string(a)))
	}
	for _, a := range o.Avoid {
		out.Avoid = append(out.Avoid, Label(lang, string(a)))
	}
	for _, t := range o.Tags {
		out.Tags = append(out.Tags, Label(lang, string(t)))
	}
	return out
}
