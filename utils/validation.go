package utils

import (
	"fmt"
	"strings"

	"spa-booking-backend/models"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// Regions tried in order when a number has no country prefix
var phoneRegions = []string{"VN", "US"}

// NormalizePhone returns the E.164 form of phone, or "" when it cannot be parsed
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	for _, region := range phoneRegions {
		parsed, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return ""
}

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	return NormalizePhone(phone) != ""
}

// RegisterValidators adds the booking enums to a validator engine so gin
// binding tags can reference them.
func RegisterValidators(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"strength": func(fl validator.FieldLevel) bool {
			return models.Strength(fl.Field().String()).Valid()
		},
		"therapist": func(fl validator.FieldLevel) bool {
			return models.Therapist(fl.Field().String()).Valid()
		},
		"area": func(fl validator.FieldLevel) bool {
			a := models.Area(fl.Field().String())
			return a.Valid() || a == models.AreaFullBody || a == models.AreaClearAll
		},
		"phone": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || ValidatePhone(s)
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validator: %w", tag, err)
		}
	}
	return nil
}
