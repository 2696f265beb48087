package scval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.False(t, cfg.GetBool("hash.verify_names"))
	assert.False(t, cfg.GetBool("compiler.reject_empty_children"))
}

func TestConfigSetGetRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.SetBool("hash.verify_names", true)
	assert.True(t, cfg.GetBool("hash.verify_names"))

	cfg.SetInt("some.int", 7)
	assert.Equal(t, 7, cfg.GetInt("some.int"))

	cfg.SetString("some.string", "value")
	assert.Equal(t, "value", cfg.GetString("some.string"))
}

func TestConfigGetMissingKeyPanics(t *testing.T) {
	cfg := NewConfig()
	assert.Panics(t, func() { cfg.GetBool("does.not.exist") })
}

func TestConfigGetWrongTypePanics(t *testing.T) {
	cfg := NewConfig()
	assert.Panics(t, func() { cfg.GetInt("hash.verify_names") })
}
