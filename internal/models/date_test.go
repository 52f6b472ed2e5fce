package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2010-04-09"`), &d))
	assert.True(t, d.Valid)
	assert.Equal(t, "2010-04-09", d.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2010-04-09"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.False(t, d.Valid)
	out, err = json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.False(t, d.Valid)
}

func TestDateRejectsGarbage(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"09/04/2010"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20100409`), &d))
}

func TestDateAcceptsTimestamp(t *testing.T) {
	d, err := ParseDate("2010-04-09T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2010-04-09", d.String())
}

func TestDateScanAndValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2001, 2, 3, 15, 4, 5, 0, time.UTC)))
	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2001-02-03", v)

	require.NoError(t, d.Scan(nil))
	v, err = d.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, d.Scan(42))
}
