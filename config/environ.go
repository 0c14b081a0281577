package config

import "os"

// Environ looks up an environment variable by name
type Environ func(key string) (string, bool)

// OSEnviron reads the process environment
func OSEnviron() Environ {
	return os.LookupEnv
}

// MapEnviron reads variables from a fixed map
func MapEnviron(m map[string]string) Environ {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
