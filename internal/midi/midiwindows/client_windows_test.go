//go:build windows
// +build windows

package midiwindows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackShortMessage(t *testing.T) {
	msg, err := packShortMessage([]byte{0x90, 60, 100})
	require.NoError(t, err)
	assert.Equal(t, uintptr(0x643C90), msg)

	msg, err = packShortMessage([]byte{0xFA})
	require.NoError(t, err)
	assert.Equal(t, uintptr(0xFA), msg)

	_, err = packShortMessage([]byte{0x3C, 0x00})
	assert.ErrorIs(t, err, ErrShortMessage)
	_, err = packShortMessage(nil)
	assert.ErrorIs(t, err, ErrShortMessage)
}
