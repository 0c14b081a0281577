package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type place struct {
	Base
	Name string `json:"name"`
	Days int    `json:"days"`
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "plain text", Stringify(String("plain text")))
	assert.Equal(t, "pointer text", Stringify(NewString("pointer text")))
	assert.Equal(t, `{"name":"Lisbon","days":3}`, Stringify(place{Name: "Lisbon", Days: 3}))
	assert.Equal(t, "", Stringify(nil))
}

func TestDecodeString(t *testing.T) {
	out := new(String)
	require.NoError(t, Decode([]byte("## Day 1\nWalk the old town"), out))
	assert.Equal(t, "## Day 1\nWalk the old town", out.String())
}

func TestDecodeJSONWithCodeFence(t *testing.T) {
	out := new(place)
	raw := "```json\n{\"name\":\"Kyoto\",\"days\":5}\n```"
	require.NoError(t, Decode([]byte(raw), out))
	assert.Equal(t, "Kyoto", out.Name)
	assert.Equal(t, 5, out.Days)
}

func TestDecodeInvalidJSON(t *testing.T) {
	out := new(place)
	assert.Error(t, Decode([]byte("not json"), out))
}
