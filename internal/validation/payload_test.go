package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/spi-admin-api/pkg/errors"
)

func TestParseRejectsNonObjects(t *testing.T) {
	for _, body := range []string{"", "[]", `"x"`, "42", "{broken"} {
		_, err := Parse([]byte(body))
		require.Error(t, err, body)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), body)
	}

	p, err := Parse([]byte(` {"a": 1} `))
	require.NoError(t, err)
	assert.True(t, p.Has("a"))
}

func TestRequiredTreatsFalsyValuesAsMissing(t *testing.T) {
	cases := map[string]string{
		"absent":       `{}`,
		"null":         `{"username": null}`,
		"empty string": `{"username": ""}`,
		"zero":         `{"username": 0}`,
		"string zero":  `{"username": "0"}`,
		"false":        `{"username": false}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := Parse([]byte(body))
			require.NoError(t, err)

			err = Required(p, "username")
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrMissingField.Code, appErr.Code)
			assert.Equal(t, "Field 'username' is required", appErr.Message)
		})
	}
}

func TestRequiredIsFailFastInOrder(t *testing.T) {
	p, err := Parse([]byte(`{"password": "x"}`))
	require.NoError(t, err)

	err = Required(p, "username", "password", "full_name")
	assert.Equal(t, "Field 'username' is required", appErrors.FromError(err).Message)

	p, err = Parse([]byte(`{"username": "root", "password": "x", "full_name": "Root"}`))
	require.NoError(t, err)
	assert.NoError(t, Required(p, "username", "password", "full_name"))
}

func TestPayloadString(t *testing.T) {
	p, err := Parse([]byte(`{"a": " root ", "b": 3}`))
	require.NoError(t, err)
	assert.Equal(t, "root", p.String("a"))
	assert.Equal(t, "", p.String("b"))
	assert.Equal(t, "", p.String("c"))
}

func TestWithoutDropsKeysAndLeavesOriginal(t *testing.T) {
	p := mustParse(t, `{"first_name":"Ana","photo_path":"x.png"}`)

	out := p.Without("photo_path", "absent")
	assert.False(t, out.Has("photo_path"))
	assert.True(t, out.Has("first_name"))
	assert.True(t, p.Has("photo_path"))
}
