package origin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPolicy() *Policy {
	return NewPolicy([]string{"https://app.example.com", "stackify://", "exp://"})
}

func TestTrusted(t *testing.T) {
	p := newTestPolicy()

	assert.True(t, p.Trusted("https://app.example.com"))
	assert.True(t, p.Trusted("stackify://"))
	assert.True(t, p.Trusted("exp://"))

	assert.False(t, p.Trusted("https://evil.example.com"))
	assert.False(t, p.Trusted("http://app.example.com"))
	assert.False(t, p.Trusted(""))
}

func TestDecide_TrustedOrigin(t *testing.T) {
	p := newTestPolicy()

	d := p.Decide("https://app.example.com")
	assert.Equal(t, "https://app.example.com", d.AllowOrigin)
	assert.True(t, d.AllowCredentials)
	assert.Equal(t, "GET, POST, OPTIONS", d.AllowMethods)
	assert.Equal(t, "Content-Type, Authorization", d.AllowHeaders)
}

func TestDecide_NativeScheme(t *testing.T) {
	p := newTestPolicy()

	d := p.Decide("stackify://")
	assert.Equal(t, "stackify://", d.AllowOrigin)
	assert.True(t, d.AllowCredentials)
}

func TestDecide_UntrustedOriginFailsClosed(t *testing.T) {
	p := newTestPolicy()

	d := p.Decide("https://evil.example.com")
	assert.Empty(t, d.AllowOrigin)
	assert.False(t, d.AllowCredentials)
}

func TestDecide_EmptyOrigin(t *testing.T) {
	p := newTestPolicy()

	d := p.Decide("")
	assert.Empty(t, d.AllowOrigin)
	assert.False(t, d.AllowCredentials)
}

func TestNewPolicy_IgnoresEmptyEntries(t *testing.T) {
	p := NewPolicy([]string{"", "https://app.example.com"})
	assert.False(t, p.Trusted(""))
	assert.True(t, p.Trusted("https://app.example.com"))
}
