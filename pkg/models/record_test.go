package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGetters(t *testing.T) {
	r := Record{"name": "Jane", "vip": true, "amount": 12.5}

	assert.Equal(t, "Jane", r.GetString("name"))
	assert.Equal(t, "", r.GetString("amount")) // wrong type degrades to zero value
	assert.Equal(t, "", r.GetString("missing"))

	assert.True(t, r.GetBool("vip"))
	assert.False(t, r.GetBool("name"))
	assert.False(t, r.GetBool("missing"))

	assert.Equal(t, 12.5, r.Get("amount"))
	assert.Nil(t, r.Get("missing"))
}

func TestRecordClone(t *testing.T) {
	original := Record{"name": "Jane"}
	clone := original.Clone()
	clone["name"] = "Changed"

	assert.Equal(t, "Jane", original.GetString("name"))

	var nilRecord Record
	cloned := nilRecord.Clone()
	require.NotNil(t, cloned)
	assert.Empty(t, cloned)
}

func TestRecordPick(t *testing.T) {
	r := Record{"name": "Jane", "email": "j@example.com", "secret": "hidden"}

	picked := r.Pick([]string{"name", "email", "missing"})
	assert.Equal(t, Record{"name": "Jane", "email": "j@example.com"}, picked)
	assert.NotContains(t, picked, "secret")
	assert.NotContains(t, picked, "missing")
}
