package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvironment(t *testing.T) {
	cases := map[string]Environment{
		"production":  Production,
		" PROD ":      Production,
		"staging":     Staging,
		"testing":     Testing,
		"test":        Testing,
		"development": Development,
		"":            Development,
		"whatever":    Development,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseEnvironment(in), "input %q", in)
	}
}

func TestEnvironmentFlags(t *testing.T) {
	assert.True(t, Production.IsProduction())
	assert.False(t, Staging.IsProduction())
	assert.True(t, Development.Verbose())
	assert.True(t, Testing.Verbose())
	assert.False(t, Production.Verbose())
}
