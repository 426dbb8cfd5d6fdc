package texture

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeValidDDS(t *testing.T, width, height, mips uint32, payload []byte) []byte {
	var buf bytes.Buffer
	_, err := buf.Write(ddsMagic[:])
	require.NoError(t, err)

	header := ddsHeader{
		Size:        ddsHeaderSize,
		Height:      height,
		Width:       width,
		MipMapCount: mips,
		PixelFormat: ddsPixelFormat{
			Size:        ddsPixelFormatSize,
			FourCC:      FourCC{'D', 'X', 'T', '1'},
			RGBBitCount: 0,
		},
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &header))
	buf.Write(payload)
	return buf.Bytes()
}

func TestParseDDSRejectsBadMagic(t *testing.T) {
	_, err := ParseDDS(bytes.NewReader([]byte("NOTD")), "bad")
	assert.ErrorIs(t, err, ErrInvalidDDS)
}

func TestParseDDSRejectsNonPowerOfTwoDimensions(t *testing.T) {
	raw := writeValidDDS(t, 100, 64, 1, []byte{1, 2, 3, 4})
	_, err := ParseDDS(bytes.NewReader(raw), "npot")
	assert.ErrorIs(t, err, ErrInvalidDDS)
}

func TestParseDDSRejectsTooManyMips(t *testing.T) {
	raw := writeValidDDS(t, 64, 64, 64, []byte{1, 2, 3, 4})
	_, err := ParseDDS(bytes.NewReader(raw), "toomany")
	assert.ErrorIs(t, err, ErrInvalidDDS)
}

func TestParseDDSAcceptsValidHeader(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	raw := writeValidDDS(t, 256, 128, 4, payload)

	tex, err := ParseDDS(bytes.NewReader(raw), "albedo")
	require.NoError(t, err)
	assert.Equal(t, uint32(256), tex.Width)
	assert.Equal(t, uint32(128), tex.Height)
	assert.Equal(t, uint32(4), tex.MipLevels)
	assert.Equal(t, "DXT1", tex.Format.String())
	assert.Equal(t, payload, tex.Data)
}

func TestParseDDSDefaultsMipCountToOne(t *testing.T) {
	raw := writeValidDDS(t, 64, 64, 0, nil)
	tex, err := ParseDDS(bytes.NewReader(raw), "nomip")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), tex.MipLevels)
}
