package section

import (
	"fmt"

	"github.com/arloliu/usc/endian"
	"github.com/arloliu/usc/errs"
	"github.com/arloliu/usc/format"
)

// The file container wraps a framed packet stream:
// magic "USC\0" | version u8 | mode tag u8 | packet count u32 | packets.
// The packet count is little-endian, like every fixed-width usc field.

// AppendContainerHeader appends the container header to dst.
func AppendContainerHeader(dst []byte, mode format.Mode, packetCount uint32) []byte {
	dst = append(dst, MagicContainer...)
	dst = append(dst, Version, byte(mode))

	engine := endian.GetLittleEndianEngine()

	return engine.AppendUint32(dst, packetCount)
}

// ParseContainerHeader validates the container header and returns the mode,
// the packet count, and the offset of the first framed byte.
func ParseContainerHeader(data []byte) (format.Mode, uint32, int, error) {
	if len(data) < ContainerHeaderSize {
		return 0, 0, 0, fmt.Errorf("container header of %d bytes: %w", len(data), errs.ErrMalformedPacket)
	}
	if string(data[:MagicLen]) != MagicContainer {
		return 0, 0, 0, fmt.Errorf("container: %w", errs.ErrInvalidMagic)
	}
	if data[MagicLen] != Version {
		return 0, 0, 0, fmt.Errorf("container version %d: %w", data[MagicLen], errs.ErrVersionUnsupported)
	}

	mode := format.Mode(data[MagicLen+1])
	if !mode.Valid() {
		return 0, 0, 0, fmt.Errorf("container mode tag %d: %w", mode, errs.ErrVersionUnsupported)
	}

	engine := endian.GetLittleEndianEngine()
	count := engine.Uint32(data[MagicLen+2 : ContainerHeaderSize])

	return mode, count, ContainerHeaderSize, nil
}
