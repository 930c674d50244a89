package bethdir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LooseSource is the sentinel owning-source value for files present directly
// in the data directory rather than inside an archive.
const LooseSource = "LOOSE_FILES"

// skipExtensions lists file extensions excluded from the loose file scan:
// archives are merged separately and plugin files are not assets.
var skipExtensions = map[string]struct{}{
	".bsa": {},
	".esp": {},
	".esl": {},
	".esm": {},
}

// Directory is a merged view of a game data directory: every archive in
// resolved priority order plus all loose files, indexed by normalized
// relative path. Build it with Populate, then LoadConfig and Classify; the
// view is read-only afterwards.
type Directory struct {
	install *Installation
	opt     Options
	log     *zerolog.Logger

	fileMap   map[string]string  // normalized path -> archive name or LooseSource
	loosePath map[string]string  // normalized path -> on-disk relative path
	archives  map[string]Archive // opened archive handles by name
	order     []string           // resolved archive order, lowest priority first

	config    map[string]any // merged rule configuration tree
	configRaw []byte         // frozen serialized form of config

	meshes     []string
	meshSet    map[string]struct{}
	heightMaps []string
	heightSet  map[string]struct{}
	cmMaps     []string
	cmSet      map[string]struct{}
	fragments  []map[string]any
}

// New creates a Directory over the given installation. opts may be nil.
func New(install *Installation, opts *Options) *Directory {
	opt := opts.normalize()

	return &Directory{
		install:   install,
		opt:       opt,
		log:       opt.Logger,
		fileMap:   make(map[string]string),
		loosePath: make(map[string]string),
		archives:  make(map[string]Archive),
		meshSet:   make(map[string]struct{}),
		heightSet: make(map[string]struct{}),
		cmSet:     make(map[string]struct{}),
	}
}

// Populate builds the virtual file index: archives are merged in ascending
// priority order, then loose files are overlaid on top, so for any path the
// last writer wins. A load order read failure is returned to the caller;
// every other per-archive failure is logged and skipped.
func (d *Directory) Populate() error {
	d.log.Info().Msgf("opening data folder %q", d.install.DataPath)

	loadOrder, err := ReadLoadOrder(d.loadOrderPath(), true)
	if err != nil {
		return err
	}
	d.log.Debug().Strs("plugins", loadOrder).Msg("plugin load order")

	d.order = d.archivePriorityList(loadOrder)
	d.log.Debug().Strs("archives", d.order).Msg("archive load order")

	for _, name := range d.order {
		if err := d.mergeArchive(name); err != nil {
			d.log.Warn().Msgf("skipping archive %s: %v", name, err)
		}
	}

	return d.addLooseFiles()
}

// mergeArchive indexes every entry of one archive, overwriting earlier
// assignments for the same normalized path.
func (d *Directory) mergeArchive(name string) error {
	path := filepath.Join(d.install.DataPath, name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("not on disk: %w", err)
	}

	if d.opt.Opener == nil {
		return errors.New("no archive opener configured")
	}

	a, err := d.opt.Opener.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	d.archives[name] = a

	for _, rel := range a.Paths() {
		d.fileMap[normalizePath(rel)] = name
	}

	return nil
}

// addLooseFiles scans the data directory recursively and assigns every
// regular non-archive, non-plugin file to LooseSource, unconditionally
// overwriting archive-sourced entries for the same path.
func (d *Directory) addLooseFiles() error {
	root := d.install.DataPath

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		if _, ok := skipExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := normalizePath(rel)
		d.fileMap[key] = LooseSource
		d.loosePath[key] = rel

		return nil
	})
}

// GetFile resolves a path through the index and returns its bytes from the
// owning source. Fails with ErrNotFound if the path is not indexed.
func (d *Directory) GetFile(path string) ([]byte, error) {
	key := normalizePath(path)
	source, ok := d.fileMap[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if source == LooseSource {
		// Read through the on-disk spelling, not the normalized key, so
		// lookups stay case-insensitive on case-sensitive filesystems.
		return os.ReadFile(filepath.Join(d.install.DataPath, d.loosePath[key]))
	}

	a, ok := d.archives[source]
	if !ok {
		return nil, fmt.Errorf("%w: archive %s not open", ErrNotFound, source)
	}

	return a.Read(key)
}

// Lookup returns the owning source of a path (an archive name or
// LooseSource) and whether the path is indexed.
func (d *Directory) Lookup(path string) (string, bool) {
	source, ok := d.fileMap[normalizePath(path)]
	return source, ok
}

// ArchiveOrder returns the resolved archive order, lowest priority first.
func (d *Directory) ArchiveOrder() []string {
	return d.order
}

// loadOrderPath returns the load order file location.
func (d *Directory) loadOrderPath() string {
	if d.opt.LoadOrderPath != "" {
		return d.opt.LoadOrderPath
	}

	return filepath.Join(d.install.LocalAppDataPath, "loadorder.txt")
}

// normalizePath lower-cases a relative path and normalizes separators to
// forward slashes. Applied on every index write and lookup.
func normalizePath(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	p = strings.ReplaceAll(p, "\\", "/")

	return strings.TrimPrefix(p, "/")
}
