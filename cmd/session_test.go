package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTestSession(t *testing.T, start, end string, weight float64, label string) {
	t.Helper()
	sessionStart = start
	sessionEnd = end
	sessionWeight = weight
	sessionLabel = label
	require.NoError(t, sessionAddRun())
}

func TestSessionAdd_AndList(t *testing.T) {
	testEnv(t)

	addTestSession(t, "9:00", "10:00", 5, "Math")

	s, err := getStore()
	require.NoError(t, err)
	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 540, sessions[0].Start)
	assert.Equal(t, 600, sessions[0].End)
	assert.Equal(t, "Math", sessions[0].Label)

	assert.NoError(t, sessionListRun())
}

func TestSessionAdd_IntegerMinutes(t *testing.T) {
	testEnv(t)

	addTestSession(t, "540", "600", 5, "Math")

	s, err := getStore()
	require.NoError(t, err)
	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 540, sessions[0].Start)
}

func TestSessionAdd_InvalidInterval(t *testing.T) {
	testEnv(t)

	sessionStart = "10:00"
	sessionEnd = "9:00"
	sessionWeight = 5
	sessionLabel = "Math"
	assert.Error(t, sessionAddRun())

	// The store stays usable and empty after a rejected add.
	s, err := getStore()
	require.NoError(t, err)
	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)

	addTestSession(t, "9:00", "10:00", 5, "Math")
}

func TestSessionAdd_BadClock(t *testing.T) {
	testEnv(t)

	sessionStart = "25:61"
	sessionEnd = "26:00"
	sessionWeight = 5
	sessionLabel = "Math"
	assert.Error(t, sessionAddRun())
}

func TestSessionAdd_DryRun(t *testing.T) {
	testEnv(t)
	dryRun = true
	ui.DryRun = true

	addTestSession(t, "9:00", "10:00", 5, "Math")

	s, err := getStore()
	require.NoError(t, err)
	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions, "dry-run must not write")
}

func TestSessionRemove_ByPrefix(t *testing.T) {
	testEnv(t)

	addTestSession(t, "9:00", "10:00", 5, "Math")

	s, err := getStore()
	require.NoError(t, err)
	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	require.NoError(t, sessionRemoveRun(sessions[0].ID[:8]))

	sessions, err = s.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionRemove_NotFound(t *testing.T) {
	testEnv(t)
	assert.Error(t, sessionRemoveRun("missing"))
}

func TestSessionClear(t *testing.T) {
	testEnv(t)

	addTestSession(t, "9:00", "10:00", 5, "Math")
	addTestSession(t, "10:00", "11:00", 3, "Phys")

	require.NoError(t, sessionClearRun())

	s, err := getStore()
	require.NoError(t, err)
	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionImport(t *testing.T) {
	dir := testEnv(t)

	path := filepath.Join(dir, "sessions.yaml")
	content := `- start: "9:00"
  end: "10:00"
  weight: 5
  label: Math
- start: 600
  end: 660
  weight: 3
  label: Phys
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, sessionImportRun(path))

	s, err := getStore()
	require.NoError(t, err)
	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Math", sessions[0].Label)
	assert.Equal(t, 540, sessions[0].Start)
	assert.Equal(t, "Phys", sessions[1].Label)
	assert.Equal(t, 600, sessions[1].Start)
}

func TestSessionImport_BadEntryKeepsEarlier(t *testing.T) {
	dir := testEnv(t)

	path := filepath.Join(dir, "sessions.yaml")
	content := `- start: "9:00"
  end: "10:00"
  weight: 5
  label: Math
- start: "11:00"
  end: "10:30"
  weight: 3
  label: Backwards
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	err := sessionImportRun(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 1")

	s, err := getStore()
	require.NoError(t, err)
	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1, "valid entries before the bad one are kept")
	assert.Equal(t, "Math", sessions[0].Label)
}

func TestSessionImport_MissingFile(t *testing.T) {
	testEnv(t)
	assert.Error(t, sessionImportRun("/nonexistent/sessions.yaml"))
}

func TestClockValue(t *testing.T) {
	got, err := clockValue("9:30")
	require.NoError(t, err)
	assert.Equal(t, 570, got)

	got, err = clockValue(45)
	require.NoError(t, err)
	assert.Equal(t, 45, got)

	_, err = clockValue(-5)
	assert.Error(t, err)

	_, err = clockValue(3.5)
	assert.Error(t, err)

	_, err = clockValue(nil)
	assert.Error(t, err)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "ABCDEFGHIJKL", shortID("ABCDEFGHIJKLMNOP"))
	assert.Equal(t, "SHORT", shortID("SHORT"))
}
