package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniboard/backend/pkg/entityschema"
	"github.com/omniboard/backend/pkg/models"
)

func TestValidateRequired(t *testing.T) {
	fields := entityschema.GetFields("lead")

	t.Run("missing required fields use the label", func(t *testing.T) {
		errs := Validate(models.Record{}, fields)
		assert.Equal(t, "Lead Name is required", errs["name"])
		assert.Equal(t, "Email is required", errs["email"])
	})

	t.Run("whitespace counts as empty", func(t *testing.T) {
		errs := Validate(models.Record{"name": "   "}, fields)
		assert.Equal(t, "Lead Name is required", errs["name"])
	})

	t.Run("required wins over the kind check", func(t *testing.T) {
		// An empty required email reports "required", not "invalid format"
		errs := Validate(models.Record{"name": "Jane", "email": ""}, fields)
		assert.Equal(t, "Email is required", errs["email"])
	})

	t.Run("optional empty fields are skipped", func(t *testing.T) {
		errs := Validate(models.Record{
			"name":  "Jane",
			"email": "jane@example.com",
		}, fields)
		assert.Empty(t, errs)
	})
}

func TestValidateEmail(t *testing.T) {
	fields := entityschema.GetFields("lead")
	base := models.Record{"name": "Jane"}

	valid := []string{
		"jane@example.com",
		"jane.doe+tag@sub.example.co",
	}
	for _, addr := range valid {
		values := base.Clone()
		values["email"] = addr
		assert.Empty(t, Validate(values, fields), "expected %q to be valid", addr)
	}

	invalid := []string{
		"not-an-email",
		"missing@tld",
		"two@@example.com",
		"spaces in@example.com",
	}
	for _, addr := range invalid {
		values := base.Clone()
		values["email"] = addr
		errs := Validate(values, fields)
		assert.Equal(t, "Invalid email format", errs["email"], "expected %q to be rejected", addr)
	}
}

func TestValidateNumber(t *testing.T) {
	fields := entityschema.GetFields("opportunity")
	base := models.Record{"name": "Big Deal"}

	t.Run("negative amounts are rejected", func(t *testing.T) {
		values := base.Clone()
		values["amount"] = -100
		errs := Validate(values, fields)
		assert.Equal(t, "Must be a positive number", errs["amount"])
	})

	t.Run("non-numeric strings are rejected", func(t *testing.T) {
		values := base.Clone()
		values["amount"] = "lots"
		errs := Validate(values, fields)
		assert.Equal(t, "Must be a positive number", errs["amount"])
	})

	t.Run("zero and numeric strings pass", func(t *testing.T) {
		for _, amount := range []interface{}{0, 5000.25, "1200"} {
			values := base.Clone()
			values["amount"] = amount
			assert.Empty(t, Validate(values, fields), "expected %v to be valid", amount)
		}
	})
}

func TestValidateIsPure(t *testing.T) {
	fields := entityschema.GetFields("lead")
	values := models.Record{"name": "", "email": "bad"}

	first := Validate(values, fields)
	second := Validate(values, fields)
	require.Equal(t, first, second)

	// The input record is never mutated
	assert.Equal(t, "", values.GetString("name"))
	assert.Equal(t, "bad", values.GetString("email"))
}

func TestValidateUnknownKindHasNoCheck(t *testing.T) {
	fields := []entityschema.FieldDescriptor{
		{Name: "custom", Label: "Custom", Kind: entityschema.FieldKind("color")},
	}
	errs := Validate(models.Record{"custom": "#ff0000"}, fields)
	assert.Empty(t, errs)
}
