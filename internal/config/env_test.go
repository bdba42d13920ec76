// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("EOSGEN_TEST_STR", "value")
	t.Setenv("EOSGEN_TEST_EMPTY", "")
	t.Setenv("EOSGEN_TEST_INT", "42")
	t.Setenv("EOSGEN_TEST_BADINT", "forty")
	t.Setenv("EOSGEN_TEST_BOOL", "yes")
	t.Setenv("EOSGEN_TEST_FLOAT", "0.25")
	t.Setenv("EOSGEN_TEST_DUR", "90s")

	assert.Equal(t, "value", ParseString("EOSGEN_TEST_STR", "d"))
	assert.Equal(t, "d", ParseString("EOSGEN_TEST_EMPTY", "d"))
	assert.Equal(t, "d", ParseString("EOSGEN_TEST_UNSET", "d"))
	assert.Equal(t, 42, ParseInt("EOSGEN_TEST_INT", 1))
	assert.Equal(t, 1, ParseInt("EOSGEN_TEST_BADINT", 1))
	assert.True(t, ParseBool("EOSGEN_TEST_BOOL", false))
	assert.Equal(t, 0.25, ParseFloat("EOSGEN_TEST_FLOAT", 1))
	assert.Equal(t, 90*time.Second, ParseDuration("EOSGEN_TEST_DUR", time.Second))
}

func TestIsSensitiveKey(t *testing.T) {
	assert.True(t, isSensitiveKey(EnvRedisPassword))
	assert.True(t, isSensitiveKey("EOSGEN_API_TOKEN"))
	assert.False(t, isSensitiveKey(EnvRedisAddr))
}
