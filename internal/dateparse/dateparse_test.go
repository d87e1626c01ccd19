package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlashFormat(t *testing.T) {
	p := New(DefaultConfig())
	c := p.Parse("VAL 01/02/2026")
	require.NotNil(t, c)
	assert.Equal(t, "01/02/2026", c.DateStr)
	assert.Equal(t, FormatDMYSlash, c.Format)
}

func TestParseISOFormat(t *testing.T) {
	p := New(DefaultConfig())
	c := p.Parse("EXP 2026-02-01")
	require.NotNil(t, c)
	assert.Equal(t, FormatYMDDash, c.Format)
}

func TestParseRejectsOutOfRangeYear(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinYear = 2000
	cfg.MaxYear = 2100
	p := New(cfg)
	c := p.Parse("01/01/1500")
	assert.Nil(t, c)
}

func TestParseRejectsInvalidCalendarDate(t *testing.T) {
	p := New(DefaultConfig())
	c := p.Parse("30/02/2026")
	assert.Nil(t, c)
}

func TestParseRejectsPastWhenDisallowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowPast = false
	cfg.Now = time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	p := New(cfg)
	c := p.Parse("01/01/2020")
	assert.Nil(t, c)
}

func TestParseNoDateReturnsNil(t *testing.T) {
	p := New(DefaultConfig())
	assert.Nil(t, p.Parse("no date here"))
}

func TestCanonicalRoundTrip(t *testing.T) {
	p := New(DefaultConfig())
	c := p.Parse("15/06/2026")
	require.NotNil(t, c)
	reformatted := Canonical(c.Time, c.Format)
	reparsed := p.Parse(reformatted)
	require.NotNil(t, reparsed)
	assert.Equal(t, c.DateStr, reparsed.DateStr)
}
