package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svampito/nudgebot/internal/models"
)

func TestKeyboardByLevel(t *testing.T) {
	t.Run("generic level 1 offers the full menu", func(t *testing.T) {
		rows := Keyboard(models.CategoryGeneric, 1)
		require.Len(t, rows, 2)
		assert.Equal(t, []Action{ActionConfirm, ActionSnooze60}, rows[0])
		assert.Equal(t, []Action{ActionDeferDay, ActionCancel}, rows[1])
	})

	t.Run("medicine level 1 is confirm or short snooze", func(t *testing.T) {
		rows := Keyboard(models.CategoryMedicine, 1)
		require.Len(t, rows, 1)
		assert.Equal(t, []Action{ActionConfirm, ActionSnooze30}, rows[0])
	})

	t.Run("medicine gains skip from level 2", func(t *testing.T) {
		rows := Keyboard(models.CategoryMedicine, 2)
		require.Len(t, rows, 1)
		assert.Contains(t, rows[0], ActionSkip)
	})

	t.Run("last level drops snoozes", func(t *testing.T) {
		for _, cat := range []models.Category{models.CategoryGeneric, models.CategoryMedicine} {
			for _, row := range Keyboard(cat, 3) {
				assert.NotContains(t, row, ActionSnooze30)
				assert.NotContains(t, row, ActionSnooze60)
			}
		}
	})
}

func TestWarningKeyboard(t *testing.T) {
	rows := WarningKeyboard()
	require.Len(t, rows, 2)
	assert.Equal(t, []Action{ActionDeferWeek, ActionCancel}, rows[0])
	assert.Equal(t, []Action{ActionDeferDay}, rows[1])
}

// The send client must never hang a scheduler cycle: an unbounded
// in-flight send would make the guard skip every following tick.
func TestSendClientHasBoundedTimeout(t *testing.T) {
	client := boundedClient()
	require.NotNil(t, client)
	assert.Equal(t, sendTimeout, client.Timeout)
	assert.Greater(t, client.Timeout, time.Duration(0))
}

func TestActionLabelsVaryByCategory(t *testing.T) {
	assert.Equal(t, "✅ Presa", actionLabel(ActionConfirm, models.CategoryMedicine))
	assert.Equal(t, "✅ Fatto!", actionLabel(ActionConfirm, models.CategoryGeneric))
	assert.Equal(t, "⏭ Saltata", actionLabel(ActionSkip, models.CategoryMedicine))
	assert.Equal(t, "⏭ Salta", actionLabel(ActionSkip, models.CategoryGeneric))
}
