package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullFloat_JSON(t *testing.T) {
	b, err := json.Marshal(PropertySummary{PropertyName: "A", AvgNightlyRate: Undefined})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"avg_nightly_rate":null`)

	b, err = json.Marshal(Float(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5", string(b))
}

func TestNullFloat_Arithmetic(t *testing.T) {
	assert.Equal(t, Float(-5000), Float(0).Sub(Float(5000)))
	assert.False(t, Float(1).Sub(Undefined).Valid)
	assert.False(t, Undefined.Sub(Float(1)).Valid)
	assert.Equal(t, "", Undefined.String())
	assert.Equal(t, "0.5", Float(0.5).String())
}
