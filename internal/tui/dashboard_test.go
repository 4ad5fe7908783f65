package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/dronesim/internal/config"
	"github.com/san-kum/dronesim/internal/testbed"
)

func newDashboard(t *testing.T, duration float64) *Dashboard {
	t.Helper()
	cfg := config.GetPreset("rest")
	require.NotNil(t, cfg)
	d, err := testbed.FromConfig(cfg)
	require.NoError(t, err)
	m, err := NewDashboard(d, cfg.Dt, duration)
	require.NoError(t, err)
	return m
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewDashboard_Rejects(t *testing.T) {
	_, err := NewDashboard(nil, 0.01, 1)
	assert.Error(t, err)

	d, err := testbed.FromConfig(config.GetPreset("rest"))
	require.NoError(t, err)
	_, err = NewDashboard(d, 0, 1)
	assert.Error(t, err)
}

func TestDashboard_TickAdvances(t *testing.T) {
	m := newDashboard(t, 5)
	assert.NotNil(t, m.Init())

	_, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)
	// One 16 ms frame at dt 0.01 takes two driver ticks.
	assert.Equal(t, 2, m.last.Step)
	assert.InDelta(t, frameInterval.Seconds(), m.last.Time, 1e-9)
	assert.Len(t, m.history, 2)
	assert.NoError(t, m.Err())
}

func TestDashboard_Pause(t *testing.T) {
	m := newDashboard(t, 5)
	m.Update(key(" "))
	assert.True(t, m.sw.Paused())

	m.Update(tickMsg(time.Now()))
	assert.Equal(t, 0, m.last.Step)
	assert.Contains(t, m.View(), "PAUSED")

	m.Update(key("p"))
	assert.False(t, m.sw.Paused())
}

func TestDashboard_Speed(t *testing.T) {
	m := newDashboard(t, 5)
	m.Update(key("+"))
	assert.Equal(t, 2.0, m.speed)

	for i := 0; i < 10; i++ {
		m.Update(key("+"))
	}
	assert.Equal(t, maxSpeed, m.speed)

	m.Update(key("0"))
	assert.Equal(t, 1.0, m.speed)
	for i := 0; i < 10; i++ {
		m.Update(key("-"))
	}
	assert.Equal(t, minSpeed, m.speed)
}

func TestDashboard_StopsAtDuration(t *testing.T) {
	m := newDashboard(t, 0.05)
	for i := 0; i < 10 && !m.done; i++ {
		m.Update(tickMsg(time.Now()))
	}
	assert.True(t, m.done)
	assert.InDelta(t, 0.05, m.last.Time, 0.02)

	_, cmd := m.Update(tickMsg(time.Now()))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "DONE")
}

func TestDashboard_Quit(t *testing.T) {
	m := newDashboard(t, 1)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestDashboard_View(t *testing.T) {
	m := newDashboard(t, 1)
	m.Update(tickMsg(time.Now()))
	m.Update(tickMsg(time.Now()))

	v := m.View()
	assert.Contains(t, v, "front")
	assert.Contains(t, v, "left_rear")
	assert.Contains(t, v, "gnd")
	assert.Contains(t, v, "RUNNING")
	assert.Contains(t, v, "height (m)")
}
