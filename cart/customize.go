package cart

import (
	"errors"

	"spa-booking-backend/models"
)

var (
	ErrUnknownArea        = errors.New("unknown body area")
	ErrAreaNotOffered     = errors.New("area is not customizable for this service")
	ErrStrengthNotOffered = errors.New("strength selection is not offered for this service")
	ErrInvalidKind        = errors.New("toggle kind must be focus or avoid")
)

type Kind string

const (
	KindFocus Kind = "focus"
	KindAvoid Kind = "avoid"
)

// Customizer edits one options bundle against a service's capability flags
type Customizer struct {
	service models.Service
	opts    models.Options
}

func NewCustomizer(service models.Service, existing *models.Options) *Customizer {
	o := models.DefaultOptions()
	if existing != nil {
		o = *existing
	}
	return &Customizer{service: service, opts: Restrict(service, o)}
}

// ToggleArea moves area out of the opposite list, then flips its membership
// in the target list. full_body and clear_all are handled as sentinels.
func (c *Customizer) ToggleArea(kind Kind, area models.Area) error {
	if kind != KindFocus && kind != KindAvoid {
		return ErrInvalidKind
	}
	switch area {
	case models.AreaFullBody:
		c.opts.Focus = c.service.Areas.Enabled()
		c.opts.Avoid = []models.Area{}
		return nil
	case models.AreaClearAll:
		c.opts.Focus = []models.Area{}
		c.opts.Avoid = []models.Area{}
		return nil
	}
	if !area.Valid() {
		return ErrUnknownArea
	}
	if !c.service.Areas.Offers(area) {
		return ErrAreaNotOffered
	}

	target, opposite := &c.opts.Focus, &c.opts.Avoid
	if kind == KindAvoid {
		target, opposite = opposite, target
	}
	*opposite = without(*opposite, area)
	if contains(*target, area) {
		*target = without(*target, area)
	} else {
		*target = append(*target, area)
	}
	return nil
}

func (c *Customizer) SetStrength(s models.Strength) error {
	if !c.service.ShowStrength {
		return ErrStrengthNotOffered
	}
	if !s.Valid() {
		return errors.New("invalid strength")
	}
	c.opts.Strength = s
	return nil
}

func (c *Customizer) Options() models.Options {
	return c.opts.Normalize()
}

// Restrict normalizes opts and drops what the service does not offer
func Restrict(service models.Service, opts models.Options) models.Options {
	o := opts.Normalize()
	if !service.ShowStrength {
		o.Strength = models.StrengthMedium
	}
	focus := o.Focus[:0]
	for _, a := range o.Focus {
		if service.Areas.Offers(a) {
			focus = append(focus, a)
		}
	}
	avoid := o.Avoid[:0]
	for _, a := range o.Avoid {
		if service.Areas.Offers(a) {
			avoid = append(avoid, a)
		}
	}
	o.Focus, o.Avoid = focus, avoid
	return o
}

// ToggleLineArea applies a customization toggle to one cart line
func (c *Cart) ToggleLineArea(lineID string, kind Kind, area models.Area) (models.Options, error) {
	i := c.index(lineID)
	if i < 0 {
		return models.Options{}, ErrLineNotFound
	}
	l := &c.Lines[i]
	cz := NewCustomizer(l.Service, &l.Options)
	if err := cz.ToggleArea(kind, area); err != nil {
		return models.Options{}, err
	}
	l.Options = cz.Options()
	return l.Options, nil
}

func contains(list []models.Area, a models.Area) bool {
	for _, x := range list {
		if x == a {
			return true
		}
	}
	return false
}

func without(list []models.Area, a models.Area) []models.Area {
	out := make([]models.Area, 0, len(list))
	for _, x := range list {
		if x != a {
			out = append(out, x)
		}
	}
	return out
}
