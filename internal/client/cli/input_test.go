package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	got, err := GetSimpleText(in, "Name?", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(bufio.NewReader(strings.NewReader("")), "Name?", io.Discard)
	assert.ErrorIs(t, err, io.EOF)
}

func TestGetPassword_Terminal(t *testing.T) {
	origTerm, origRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = origTerm, origRead })

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("s3cret!"), nil }

	var out bytes.Buffer
	pw, err := GetPassword(bufio.NewReader(strings.NewReader("")), &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret!"), pw)
	assert.Equal(t, "Enter password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("tty gone") }
	_, err = GetPassword(bufio.NewReader(strings.NewReader("")), io.Discard)
	assert.EqualError(t, err, "tty gone")
}

func TestGetPassword_Piped(t *testing.T) {
	pipedStdin(t)

	pw, err := GetPassword(bufio.NewReader(strings.NewReader("p@ss\n")), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []byte("p@ss"), pw)
}

func TestValueOrPrompt(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("typed\n"))

	v, err := valueOrPrompt(in, io.Discard, "given", "ask")
	require.NoError(t, err)
	assert.Equal(t, "given", v)

	v, err = valueOrPrompt(in, io.Discard, "", "ask")
	require.NoError(t, err)
	assert.Equal(t, "typed", v)
}
