package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendLoad_NewestFirst(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "state", "history.jsonl"))

	require.NoError(t, l.Append(Record{Args: []string{"--dex-file", "a.apk"}, ExitCode: 0}))
	require.NoError(t, l.Append(Record{Args: []string{"--dex-file", "b.apk"}, ExitCode: 3}))

	records, err := l.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"--dex-file", "b.apk"}, records[0].Args)
	assert.Equal(t, 3, records[0].ExitCode)
	assert.NotEmpty(t, records[0].ID)
	assert.False(t, records[1].Timestamp.IsZero())

	st, err := os.Stat(l.Path())
	require.NoError(t, err)
	if filepath.Separator == '/' {
		assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
	}
}

func TestLoad_Missing(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "none.jsonl"))
	records, err := l.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoad_TornTail(t *testing.T) {
	p := filepath.Join(t.TempDir(), "history.jsonl")
	l := New(p)
	require.NoError(t, l.Append(Record{ID: "ok"}))

	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString(`{"id":"tor`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := l.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ok", records[0].ID)
}

func TestDeleteAndClear(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "history.jsonl"))
	for _, id := range []string{"one", "two", "three"} {
		require.NoError(t, l.Append(Record{ID: id}))
	}

	require.NoError(t, l.Delete(1))
	records, err := l.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "three", records[0].ID)
	assert.Equal(t, "one", records[1].ID)

	assert.Error(t, l.Delete(5))

	require.NoError(t, l.Clear())
	require.NoError(t, l.Clear())
	records, err = l.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewRecord(t *testing.T) {
	args := []string{"--foo", "bar baz"}
	r := NewRecord(args, 143, 2*time.Second, "embedded", errors.New("boom"))
	args[0] = "changed"
	assert.Equal(t, []string{"--foo", "bar baz"}, r.Args)
	assert.Equal(t, 143, r.ExitCode)
	assert.Equal(t, "2s", r.Duration)
	assert.Equal(t, "embedded", r.Origin)
	assert.Equal(t, "boom", r.Error)
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "appcompat", "history.jsonl"), DefaultPath())
}
