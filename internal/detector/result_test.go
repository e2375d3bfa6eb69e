package detector

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagCountJSON(t *testing.T) {
	tags := []TagCount{{Tag: "v2", Count: 2}, {Tag: "v1", Count: 1}}

	data, err := json.Marshal(tags)
	require.NoError(t, err)
	assert.Equal(t, `[["v2",2],["v1",1]]`, string(data))

	var parsed []TagCount
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, tags, parsed)
}

func TestTagCountUnmarshalMalformed(t *testing.T) {
	var tc TagCount
	assert.Error(t, json.Unmarshal([]byte(`["v1"]`), &tc))
	assert.Error(t, json.Unmarshal([]byte(`{"tag": "v1"}`), &tc))
	assert.Error(t, json.Unmarshal([]byte(`[1, "v1"]`), &tc))
}
