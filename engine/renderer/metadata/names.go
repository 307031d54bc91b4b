package metadata

import "bytes"

// InvalidID marks a free slot or a missing handle.
const InvalidID uint32 = 4294967295

const (
	// Longest texture name, in bytes.
	TextureNameMaxLength = 512
	// Longest material name, in bytes.
	MaterialNameMaxLength = 256
	// Longest geometry name, in bytes.
	GeometryNameMaxLength = 256
)

// nameString reads a zero terminated name out of a fixed buffer.
func nameString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}

// setName copies name into buf, truncating it and keeping a terminator. It
// reports whether the whole name fit.
func setName(buf []byte, name string) bool {
	clear(buf)
	n := copy(buf[:len(buf)-1], name)
	return n == len(name)
}
