package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	for _, raw := range []string{"dev", "QA", " staging ", "Prod"} {
		env, err := ParseEnvironment(raw)
		require.NoError(t, err, raw)
		assert.Contains(t, Environments(), env)
	}
	_, err := ParseEnvironment("uat")
	assert.Error(t, err)
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile("PROD")
	require.NoError(t, err)
	assert.Equal(t, ProfileProd, p)
	assert.True(t, p.Minify())
	assert.False(t, ProfileDev.Minify())

	_, err = ParseProfile("debug")
	assert.Error(t, err)
}

func TestOutputForProfile(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "dist/dev", cfg.Output(ProfileDev).Dir)
	assert.Equal(t, "vendors.min.css", cfg.Output(ProfileProd).VendorStyle)
}
