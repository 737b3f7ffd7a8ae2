package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDetailLayout(t *testing.T) {
	t.Run("known type", func(t *testing.T) {
		layout := GetDetailLayout("opportunity")
		require.Len(t, layout.Sections, 2)
		assert.Equal(t, "Opportunity", layout.Sections[0].Title)
		assert.Equal(t, []string{"name", "stage", "amount", "close_date"}, layout.Sections[0].Fields)
		assert.Equal(t, []string{"customer_id"}, layout.Sections[1].Fields)
	})

	t.Run("unknown type yields an empty layout", func(t *testing.T) {
		layout := GetDetailLayout("spaceship")
		require.NotNil(t, layout.Sections)
		assert.Empty(t, layout.Sections)
	})

	t.Run("every schema type has a layout", func(t *testing.T) {
		for _, entityType := range []string{"employee", "product", "customer", "lead", "opportunity", "emission"} {
			layout := GetDetailLayout(entityType)
			assert.NotEmpty(t, layout.Sections, "missing layout for %s", entityType)
		}
	})

	t.Run("returned sections are a private copy", func(t *testing.T) {
		first := GetDetailLayout("lead")
		first.Sections[0].Title = "Mutated"

		second := GetDetailLayout("lead")
		assert.Equal(t, "Lead", second.Sections[0].Title)
	})
}
