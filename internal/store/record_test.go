package store_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oai-harvest/harvester/internal/store"
)

func TestEncodeMetadata_MarshalsFieldMap(t *testing.T) {
	fields := map[string][]string{
		"title": {"A Finding Aid"},
		"date":  {"1920", "1945"},
	}

	encoded, err := store.EncodeMetadata(fields)
	require.NoError(t, err)

	var decoded map[string][]string
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, fields, decoded)
}

func TestEncodeMetadata_NilFieldsEncodesEmptyObject(t *testing.T) {
	encoded, err := store.EncodeMetadata(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(encoded))
}
