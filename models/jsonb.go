package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Default language used when a translation is missing
const DefaultLang = "en"

// Languages every catalog text must carry
var RequiredLangs = []string{"en", "vi"}

// LocalizedText maps a language code to text, stored as jsonb
type LocalizedText map[string]string

func (t LocalizedText) Value() (driver.Value, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(t)
}

func (t *LocalizedText) Scan(value interface{}) error {
	return scanJSON(value, t)
}

// In returns the text for lang, falling back to English and then to any value
func (t LocalizedText) In(lang string) string {
	if v, ok := t[lang]; ok && v != "" {
		return v
	}
	if v, ok := t[DefaultLang]; ok && v != "" {
		return v
	}
	for _, v := range t {
		if v != "" {
			return v
		}
	}
	return ""
}

// Missing lists the required languages that have no text
func (t LocalizedText) Missing() []string {
	var out []string
	for _, lang := range RequiredLangs {
		if t[lang] == "" {
			out = append(out, lang)
		}
	}
	return out
}

// AreaFlags says which body areas a service lets the customer customize
type AreaFlags map[Area]bool

func (a AreaFlags) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *AreaFlags) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// Enabled returns the offered areas in canonical order.
// A service without a capability map offers every area.
func (a AreaFlags) Enabled() []Area {
	out := make([]Area, 0, len(AllAreas))
	for _, area := range AllAreas {
		if a == nil || a[area] {
			out = append(out, area)
		}
	}
	return out
}

// Offers reports whether the area can be customized
func (a AreaFlags) Offers(area Area) bool {
	if a == nil {
		return area.Valid()
	}
	return a[area]
}

// TagList holds multilingual notice labels (pregnancy, allergy, ...)
type TagList []LocalizedText

func (l TagList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *TagList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("type assertion to []byte failed")
	}
}
