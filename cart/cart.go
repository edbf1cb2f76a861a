// Package cart holds the per-session booking cart. Every add creates an
// independent line so each line can carry its own customization.
package cart

import (
	"errors"

	"spa-booking-backend/models"

	"github.com/google/uuid"
)

// MaxQuantity bounds a single line so subtotals stay well inside int64
const MaxQuantity = 99

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
)

type Line struct {
	ID       string         `json:"id"`
	Service  models.Service `json:"service"`
	Quantity int            `json:"qty"`
	Options  models.Options `json:"options"`
}

func (l Line) SubtotalVND() int64 { return l.Service.PriceVND * int64(l.Quantity) }
func (l Line) SubtotalUSD() int64 { return l.Service.PriceUSD * int64(l.Quantity) }

type Cart struct {
	Lines []Line `json:"lines"`
}

func New() *Cart {
	return &Cart{Lines: []Line{}}
}

// AddLine appends a new line holding a snapshot of service. Lines for the
// same service are never merged.
func (c *Cart) AddLine(service models.Service, qty int, opts *models.Options) (string, error) {
	if qty <= 0 || qty > MaxQuantity {
		return "", ErrInvalidQuantity
	}
	o := models.DefaultOptions()
	if opts != nil {
		o = *opts
	}
	line := Line{
		ID:       uuid.NewString(),
		Service:  service,
		Quantity: qty,
		Options:  Restrict(service, o),
	}
	c.Lines = append(c.Lines, line)
	return line.ID, nil
}

// UpdateLine replaces the quantity; qty <= 0 removes the line
func (c *Cart) UpdateLine(lineID string, qty int) error {
	i := c.index(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return nil
	}
	if qty > MaxQuantity {
		return ErrInvalidQuantity
	}
	c.Lines[i].Quantity = qty
	return nil
}

func (c *Cart) RemoveLine(lineID string) error {
	return c.UpdateLine(lineID, 0)
}

// UpdateLineOptions merges patch into one line's options
func (c *Cart) UpdateLineOptions(lineID string, patch models.OptionsPatch) error {
	i := c.index(lineID)
	if i < 0 {
		return ErrLineNotFound
	}
	l := &c.Lines[i]
	l.Options = Restrict(l.Service, patch.Apply(l.Options))
	return nil
}

// UpdateAllLinesOptions broadcasts one patch to every line
func (c *Cart) UpdateAllLinesOptions(patch models.OptionsPatch) {
	for i := range c.Lines {
		l := &c.Lines[i]
		l.Options = Restrict(l.Service, patch.Apply(l.Options))
	}
}

func (c *Cart) Clear() {
	c.Lines = []Line{}
}

func (c *Cart) Line(lineID string) (Line, bool) {
	i := c.index(lineID)
	if i < 0 {
		return Line{}, false
	}
	return c.Lines[i], true
}

func (c *Cart) Len() int { return len(c.Lines) }

func (c *Cart) index(lineID string) int {
	for i, l := range c.Lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}

type Totals struct {
	TotalVND    int64 `json:"totalVND"`
	TotalUSD    int64 `json:"totalUSD"`
	Quantity    int   `json:"quantity"`
	MaxDuration int   `json:"maxDuration"` // services run in parallel rooms
}

func (c *Cart) Totals() Totals {
	var t Totals
	for _, l := range c.Lines {
		t.TotalVND += l.SubtotalVND()
		t.TotalUSD += l.SubtotalUSD()
		t.Quantity += l.Quantity
		if l.Service.Duration > t.MaxDuration {
			t.MaxDuration = l.Service.Duration
		}
	}
	return t
}

// Group is a display-only aggregation of lines
type Group struct {
	Key         string               `json:"key"`
	ServiceIDs  []string             `json:"serviceIds"`
	Name        models.LocalizedText `json:"name"`
	Quantity    int                  `json:"qty"`
	SubtotalVND int64                `json:"subtotalVND"`
	SubtotalUSD int64                `json:"subtotalUSD"`
	LineIDs     []string             `json:"lineIds"`
}

// GroupByService sums quantity per service id
func (c *Cart) GroupByService() []Group {
	return c.group(func(s models.Service) string { return s.ID })
}

// GroupByVariant merges duration variants sharing a service group id
func (c *Cart) GroupByVariant() []Group {
	return c.group(models.Service.GroupKey)
}

func (c *Cart) group(key func(models.Service) string) []Group {
	var out []Group
	pos := map[string]int{}
	for _, l := range c.Lines {
		k := key(l.Service)
		i, ok := pos[k]
		if !ok {
			out = append(out, Group{Key: k, Name: l.Service.Name})
			i = len(out) - 1
			pos[k] = i
		}
		g := &out[i]
		if !containsString(g.ServiceIDs, l.Service.ID) {
			g.ServiceIDs = append(g.ServiceIDs, l.Service.ID)
		}
		g.Quantity += l.Quantity
		g.SubtotalVND += l.SubtotalVND()
		g.SubtotalUSD += l.SubtotalUSD()
		g.LineIDs = append(g.LineIDs, l.ID)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
