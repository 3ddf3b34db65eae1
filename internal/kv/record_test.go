package kv

import (
	"strings"
	"testing"

	"github.com/ironkv/ironkv/internal/ironerr"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	buf, err := encodeRecord(7, "user:1:name", "Alice")
	require.NoError(t, err)
	require.Len(t, buf, 4096)

	rec, err := decodeRecord(buf)
	require.NoError(t, err)
	require.Equal(t, uint64(7), rec.LSN)
	require.Equal(t, "user:1:name", rec.Key)
	require.Equal(t, "Alice", rec.Value)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf, err := encodeRecord(1, "k", "v")
	require.NoError(t, err)
	buf[0] ^= 0xFF

	_, err = decodeRecord(buf)
	require.True(t, ironerr.Is(err, ironerr.KindInvalidPageFormat))
}

func TestDecodeRejectsChecksumMismatch(t *testing.T) {
	buf, err := encodeRecord(1, "k", "v")
	require.NoError(t, err)
	buf[offPayload] ^= 0xFF // corrupt key bytes, leaving magic/version intact

	_, err = decodeRecord(buf)
	require.True(t, ironerr.Is(err, ironerr.KindChecksumMismatch))
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	_, err := decodeRecord([]byte{1, 2, 3})
	require.True(t, ironerr.Is(err, ironerr.KindInvalidPageFormat))
}

func TestEncodeRejectsKeyTooLarge(t *testing.T) {
	bigKey := strings.Repeat("k", KeyMax+1)
	_, err := encodeRecord(1, bigKey, "v")
	require.True(t, ironerr.Is(err, ironerr.KindKeyTooLarge))
}

func TestEncodeRejectsValueTooLarge(t *testing.T) {
	bigValue := strings.Repeat("v", 4096)
	_, err := encodeRecord(1, "k", bigValue)
	require.True(t, ironerr.Is(err, ironerr.KindValueTooLarge))
}
