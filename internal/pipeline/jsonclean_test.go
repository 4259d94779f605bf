package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeLoose(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	t.Run("plain json", func(t *testing.T) {
		var v payload
		assert.True(t, DecodeLoose(`{"title":"a"}`, &v))
		assert.Equal(t, "a", v.Title)
	})

	t.Run("fenced json", func(t *testing.T) {
		var v payload
		assert.True(t, DecodeLoose("```json\n{\"title\":\"b\"}\n```", &v))
		assert.Equal(t, "b", v.Title)
	})

	t.Run("bare fence", func(t *testing.T) {
		var v payload
		assert.True(t, DecodeLoose("```\n{\"title\":\"c\"}\n```", &v))
		assert.Equal(t, "c", v.Title)
	})

	t.Run("prose wrapped", func(t *testing.T) {
		var v payload
		assert.True(t, DecodeLoose(`Here is the result: {"title":"d"} Hope that helps!`, &v))
		assert.Equal(t, "d", v.Title)
	})

	t.Run("no json at all", func(t *testing.T) {
		var v payload
		assert.False(t, DecodeLoose("sorry, I cannot do that", &v))
	})

	t.Run("malformed json", func(t *testing.T) {
		var v payload
		assert.False(t, DecodeLoose(`{"title": unterminated`, &v))
	})
}
