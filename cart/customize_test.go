package cart

import (
	"testing"

	"spa-booking-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleArea(t *testing.T) {
	s := svc("STD-1", 100, 1, 60)

	cz := NewCustomizer(s, nil)
	require.NoError(t, cz.ToggleArea(KindFocus, models.AreaBack))
	assert.Equal(t, []models.Area{models.AreaBack}, cz.Options().Focus)

	// toggling the same area into avoid moves it across
	require.NoError(t, cz.ToggleArea(KindAvoid, models.AreaBack))
	o := cz.Options()
	assert.Empty(t, o.Focus)
	assert.Equal(t, []models.Area{models.AreaBack}, o.Avoid)

	// toggling again removes it
	require.NoError(t, cz.ToggleArea(KindAvoid, models.AreaBack))
	assert.Empty(t, cz.Options().Avoid)
}

func TestToggleArea_Sentinels(t *testing.T) {
	s := svc("STD-1", 100, 1, 60)
	s.Areas = models.AreaFlags{models.AreaBack: true, models.AreaNeck: true, models.AreaFeet: false}

	cz := NewCustomizer(s, nil)
	require.NoError(t, cz.ToggleArea(KindAvoid, models.AreaNeck))
	require.NoError(t, cz.ToggleArea(KindFocus, models.AreaFullBody))
	o := cz.Options()
	assert.Equal(t, []models.Area{models.AreaNeck, models.AreaBack}, o.Focus)
	assert.Empty(t, o.Avoid)

	require.NoError(t, cz.ToggleArea(KindFocus, models.AreaClearAll))
	o = cz.Options()
	assert.Empty(t, o.Focus)
	assert.Empty(t, o.Avoid)
}

func TestToggleArea_Errors(t *testing.T) {
	s := svc("STD-1", 100, 1, 60)
	s.Areas = models.AreaFlags{models.AreaBack: true}

	cz := NewCustomizer(s, nil)
	assert.ErrorIs(t, cz.ToggleArea(KindFocus, models.AreaFeet), ErrAreaNotOffered)
	assert.ErrorIs(t, cz.ToggleArea(KindFocus, "elbow"), ErrUnknownArea)
	assert.ErrorIs(t, cz.ToggleArea("other", models.AreaBack), ErrInvalidKind)
	assert.ErrorIs(t, cz.SetStrength(models.StrengthStrong), ErrStrengthNotOffered)
}

func TestToggleLineArea(t *testing.T) {
	c := New()
	id, _ := c.AddLine(svc("STD-1", 100, 1, 60), 1, nil)

	o, err := c.ToggleLineArea(id, KindFocus, models.AreaShoulders)
	require.NoError(t, err)
	assert.Equal(t, []models.Area{models.AreaShoulders}, o.Focus)

	l, _ := c.Line(id)
	assert.Equal(t, o, l.Options)

	_, err = c.ToggleLineArea("missing", KindFocus, models.AreaBack)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRestore(t *testing.T) {
	catalog := map[string]models.Service{
		"STD-1": svc("STD-1", 350000, 14, 60),
	}
	lookup := func(id string) (models.Service, bool) {
		s, ok := catalog[id]
		return s, ok
	}
	opts := models.DefaultOptions()
	opts.Focus = []models.Area{models.AreaBack}
	history := []models.BookingLine{
		{ServiceID: "STD-1", Quantity: 2, UnitPrice: 300000, Options: opts},
		{ServiceID: "GONE", Quantity: 1},
	}

	c := New()
	skipped := c.Restore(history, lookup)

	assert.Equal(t, []string{"GONE"}, skipped)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, int64(350000), c.Lines[0].Service.PriceVND)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, []models.Area{models.AreaBack}, c.Lines[0].Options.Focus)
}
