package bethdir

// Archive is an opened archive container exposing its bundled assets by
// relative path. Implementations must treat Read lookups case-insensitively,
// since index keys are normalized to lower case.
type Archive interface {
	// Paths lists the relative paths of every asset in the archive.
	Paths() []string
	// Read returns the bytes of the asset at the given relative path.
	Read(path string) ([]byte, error)
}

// ArchiveOpener opens archive container files from disk.
type ArchiveOpener interface {
	// Open opens the archive file at the given path.
	Open(path string) (Archive, error)
}

// ImageInfo describes a decoded texture.
type ImageInfo struct {
	// AlphaAllOpaque reports whether every alpha sample is fully opaque.
	AlphaAllOpaque bool
}

// ImageDecoder decodes compressed texture bytes.
type ImageDecoder interface {
	// Decode decodes the given texture bytes.
	Decode(data []byte) (ImageInfo, error)
}
