package bethdir

import "errors"

var (
	// ErrGameNotFound indicates no installation could be located for the game.
	ErrGameNotFound = errors.New("game not found")

	// ErrNotFound indicates a path absent from the virtual file index.
	ErrNotFound = errors.New("file not found")

	// ErrBaseConfig indicates the base rule configuration is missing or unreadable.
	ErrBaseConfig = errors.New("base config")
)
