package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("VERITAS_TEST_STR", "set")
	assert.Equal(t, "set", GetEnv("VERITAS_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("VERITAS_TEST_STR_UNSET", "fallback"))

	t.Setenv("VERITAS_TEST_EMPTY", "")
	assert.Equal(t, "fallback", GetEnv("VERITAS_TEST_EMPTY", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("VERITAS_TEST_INT", "42")
	assert.Equal(t, 42, GetEnvInt("VERITAS_TEST_INT", 7))

	t.Setenv("VERITAS_TEST_INT", "not-a-number")
	assert.Equal(t, 7, GetEnvInt("VERITAS_TEST_INT", 7))

	assert.Equal(t, 7, GetEnvInt("VERITAS_TEST_INT_UNSET", 7))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("VERITAS_TEST_FLOAT", "0.75")
	assert.Equal(t, 0.75, GetEnvFloat("VERITAS_TEST_FLOAT", 0.5))

	t.Setenv("VERITAS_TEST_FLOAT", "three")
	assert.Equal(t, 0.5, GetEnvFloat("VERITAS_TEST_FLOAT", 0.5))
}
