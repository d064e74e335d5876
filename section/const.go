package section

// Wire magics and the pinned format version. The wire format is fixed:
// unknown versions and magics are rejected, never skipped.
const (
	// MagicDict opens the one-time template bank packet.
	MagicDict = "USCD"
	// MagicData opens a per-window body packet.
	MagicData = "USCA"
	// MagicIndex opens the hot-lite-full event-id index packet.
	MagicIndex = "USCI"
	// MagicContainer opens the on-disk file container.
	MagicContainer = "USC\x00"

	// Version is the wire format version this package reads and writes.
	Version = 1

	// MagicLen is the length of every packet magic.
	MagicLen = 4

	// ContainerHeaderSize is the fixed container header size:
	// magic (4) + version (1) + mode tag (1) + packet count (4).
	ContainerHeaderSize = 10
)
