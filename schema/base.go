package schema

import "encoding/json"

// Base is a base schema
type Base struct{}

// String implements Schema interface
func (r Base) String() string {
	bs, _ := json.Marshal(r)
	return string(bs)
}
