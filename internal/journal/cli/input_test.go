package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText_TrimsLine(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  Emma  \n"))
	var out bytes.Buffer

	got, err := GetSimpleText(reader, "Child name", &out)
	require.NoError(t, err)
	assert.Equal(t, "Emma", got)
	assert.Contains(t, out.String(), "Child name")
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("Broccoli"))
	var out bytes.Buffer

	got, err := GetSimpleText(reader, "Food name", &out)
	require.NoError(t, err)
	assert.Equal(t, "Broccoli", got)
}

func TestGetPassword_UsesSeam(t *testing.T) {
	orig := readPassword
	readPassword = func(fd int) ([]byte, error) { return []byte("correct horse"), nil }
	defer func() { readPassword = orig }()

	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, []byte("correct horse"), pw)
	assert.Contains(t, out.String(), "passphrase")
}
