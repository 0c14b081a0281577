package schema

import (
	"encoding/json"
	"strings"
)

// Schema is message schema interface
type Schema interface {
	// String returns the schema's text presentation
	String() string
}

// Unmarshaler is implemented by schemas which decode raw model output themselves
type Unmarshaler interface {
	Unmarshal([]byte) error
}

func Stringify(s Schema) string {
	if s == nil {
		return ""
	}
	if v, ok := s.(String); ok {
		return string(v)
	}
	if v, ok := s.(*String); ok && v != nil {
		return string(*v)
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

func ToBytes(s Schema) []byte {
	return []byte(Stringify(s))
}

// Decode fills out with raw model output.
// Schemas implementing Unmarshaler decode themselves, others are decoded as JSON
// after stripping an optional markdown code fence.
func Decode(bs []byte, out any) error {
	if v, ok := out.(Unmarshaler); ok {
		return v.Unmarshal(bs)
	}
	return json.Unmarshal([]byte(stripCodeFence(string(bs))), out)
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
