package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"ok"}`))

		var p payload
		require.NoError(t, DecodeJSON(r, &p))
		assert.Equal(t, "ok", p.Name)
	})

	t.Run("empty body maps to ErrEmptyBody", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(""))

		var p payload
		err := DecodeJSON(r, &p)
		assert.ErrorIs(t, err, ErrEmptyBody)
	})

	t.Run("nil body maps to ErrEmptyBody", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", nil)
		r.Body = nil

		var p payload
		err := DecodeJSON(r, &p)
		assert.ErrorIs(t, err, ErrEmptyBody)
	})

	t.Run("truncated body is a client error", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":`))

		var p payload
		err := DecodeJSON(r, &p)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrEmptyBody)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"ok","extra":1}`))

		var p payload
		err := DecodeJSON(r, &p)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrEmptyBody)
	})
}
