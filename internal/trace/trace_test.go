package trace

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySink_PreservesOrder(t *testing.T) {
	m := NewMemorySink()
	m.Write("first")
	m.Write("second")
	m.Write("third")

	assert.Equal(t, []string{"first", "second", "third"}, m.Lines)
}

func TestWriterSink_AppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf)
	s.Write("a line")
	s.Write("another")

	assert.Equal(t, "a line\nanother\n", buf.String())
}

func TestMulti_FansOutToEverySink(t *testing.T) {
	m1 := NewMemorySink()
	m2 := NewMemorySink()
	s := Multi(m1, m2)

	s.Write("hello")

	assert.Equal(t, []string{"hello"}, m1.Lines)
	assert.Equal(t, []string{"hello"}, m2.Lines)
}

func TestFileSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	fs, err := NewFileSink(path)
	require.NoError(t, err)

	fs.Write("step 1")
	fs.Write("step 2")
	require.NoError(t, fs.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "step 1\nstep 2\n", string(data))
}

func TestDefault_IsNullUntilSet(t *testing.T) {
	assert.NotPanics(t, func() { Default().Write("discarded") })

	m := NewMemorySink()
	SetDefault(m)
	defer SetDefault(NullSink{})

	Default().Write("kept")
	assert.Equal(t, []string{"kept"}, m.Lines)
}
