package cart

import "spa-booking-backend/models"

// Lookup resolves a service id against the current catalog
type Lookup func(id string) (models.Service, bool)

// Restore appends one line per historical booking line, re-resolving each
// service against the current catalog so prices are current. Lines whose
// service no longer exists are skipped and their ids returned.
func (c *Cart) Restore(history []models.BookingLine, lookup Lookup) (skipped []string) {
	for _, h := range history {
		svc, ok := lookup(h.ServiceID)
		if !ok || !svc.IsActive {
			skipped = append(skipped, h.ServiceID)
			continue
		}
		qty := h.Quantity
		if qty <= 0 {
			qty = 1
		}
		opts := h.Options
		if _, err := c.AddLine(svc, qty, &opts); err != nil {
			skipped = append(skipped, h.ServiceID)
		}
	}
	return skipped
}
