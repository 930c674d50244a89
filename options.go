package bethdir

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls directory indexing and classification behavior.
type Options struct {
	// Logger receives progress and warning output. Defaults to the global
	// zerolog logger.
	Logger *zerolog.Logger
	// Opener reads archive containers found in the data directory. Without
	// an opener only loose files are indexed.
	Opener ArchiveOpener
	// Decoder inspects texture bytes during complex material confirmation.
	// Without a decoder complex material candidates are never confirmed.
	Decoder ImageDecoder
	// LoadOrderPath overrides the load order file location.
	// The default is loadorder.txt in the game's local appdata directory.
	LoadOrderPath string
	// BaseConfigPath is the path to the base rule configuration JSON.
	// Required before LoadConfig.
	BaseConfigPath string
	// FragmentDir is the index-relative directory holding load-order
	// supplied configuration fragments (default "parallaxgen").
	FragmentDir string
}

// normalize normalizes the Options.
func (o *Options) normalize() Options {
	if o == nil {
		return Options{Logger: &log.Logger, FragmentDir: defaultFragmentDir}
	}

	out := *o
	if out.Logger == nil {
		out.Logger = &log.Logger
	}
	if out.FragmentDir == "" {
		out.FragmentDir = defaultFragmentDir
	}

	return out
}
