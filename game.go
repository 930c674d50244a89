package bethdir

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GameType identifies a supported game edition.
type GameType int

const (
	// SkyrimSE is Skyrim Special Edition.
	SkyrimSE GameType = iota
	// SkyrimVR is Skyrim VR.
	SkyrimVR
	// Skyrim is the original (Legendary Edition) Skyrim.
	Skyrim
)

// String returns the human-readable game name.
func (t GameType) String() string {
	switch t {
	case SkyrimSE:
		return "Skyrim Special Edition"
	case SkyrimVR:
		return "Skyrim VR"
	case Skyrim:
		return "Skyrim"
	default:
		return fmt.Sprintf("GameType(%d)", int(t))
	}
}

// StoreType identifies the storefront an installation came from.
type StoreType int

const (
	// Steam storefront.
	Steam StoreType = iota
	// WindowsStore storefront.
	WindowsStore
	// EpicGamesStore storefront.
	EpicGamesStore
	// GOG storefront.
	GOG
)

// gameInfo holds the static per-game lookup table entry.
type gameInfo struct {
	steamID     int    // Steam application ID
	steamFolder string // Folder name under steamapps/common
	pathName    string // Subfolder name under My Games and local appdata
	iniName     string // Base settings INI file name
	iniCustom   string // User override settings INI file name
}

// gameTable is the static lookup table keyed by game type.
var gameTable = map[GameType]gameInfo{
	SkyrimSE: {489830, "Skyrim Special Edition", "Skyrim Special Edition", "skyrim.ini", "skyrimcustom.ini"},
	SkyrimVR: {611670, "SkyrimVR", "Skyrim VR", "skyrimvr.ini", "skyrimcustom.ini"},
	Skyrim:   {72850, "Skyrim", "Skyrim", "skyrim.ini", "skyrimcustom.ini"},
}

// Installation describes a resolved game installation. Immutable once
// returned by LocateGame.
type Installation struct {
	Type             GameType // Game edition
	Path             string   // Install directory
	DataPath         string   // Asset data directory
	DocumentPath     string   // Per-user document directory
	LocalAppDataPath string   // Per-user local state directory
}

// LocateGame resolves an installation for the given game type. When
// overridePath is empty the install directory is discovered through the
// Steam library metadata; otherwise overridePath is used as-is. Fails with
// ErrGameNotFound if no installation can be located.
func LocateGame(gt GameType, overridePath string) (*Installation, error) {
	info, ok := gameTable[gt]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported game type %d", ErrGameNotFound, int(gt))
	}

	gamePath := overridePath
	if gamePath == "" {
		gamePath = findSteamGamePath(info.steamFolder)
	}
	if gamePath == "" {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gt)
	}

	st, err := os.Stat(gamePath)
	if err != nil || !st.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrGameNotFound, gamePath)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("%w: no home directory: %v", ErrGameNotFound, err)
	}
	local, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("%w: no local appdata directory: %v", ErrGameNotFound, err)
	}

	return &Installation{
		Type:             gt,
		Path:             gamePath,
		DataPath:         filepath.Join(gamePath, "Data"),
		DocumentPath:     filepath.Join(home, "Documents", "My Games", info.pathName),
		LocalAppDataPath: filepath.Join(local, info.pathName),
	}, nil
}

// findSteamGamePath probes known Steam library roots for the game folder.
func findSteamGamePath(folder string) string {
	for _, root := range steamLibraryRoots() {
		p := filepath.Join(root, "steamapps", "common", folder)
		if st, err := os.Stat(p); err == nil && st.IsDir() {
			return p
		}
	}

	return ""
}

// steamLibraryRoots returns candidate Steam library directories: the
// platform default installs plus any extra libraries declared in
// libraryfolders.vdf.
func steamLibraryRoots() []string {
	var roots []string

	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots,
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".local", "share", "Steam"),
			filepath.Join(home, "Library", "Application Support", "Steam"),
		)
	}
	if runtime.GOOS == "windows" {
		roots = append(roots,
			`C:\Program Files (x86)\Steam`,
			`C:\Program Files\Steam`,
		)
	}

	var out []string
	seen := make(map[string]struct{})
	for _, root := range roots {
		if st, err := os.Stat(root); err != nil || !st.IsDir() {
			continue
		}
		for _, r := range append([]string{root}, extraSteamLibraries(root)...) {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}

	return out
}

// extraSteamLibraries extracts additional library paths declared in a Steam
// root's libraryfolders.vdf.
func extraSteamLibraries(root string) []string {
	f, err := os.Open(filepath.Join(root, "steamapps", "libraryfolders.vdf"))
	if err != nil {
		return nil
	}
	defer f.Close() //nolint:errcheck

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		// Lines look like: "path"  "/mnt/games/SteamLibrary"
		fields := strings.SplitN(strings.TrimSpace(sc.Text()), "\"", 5)
		if len(fields) < 4 || fields[1] != "path" {
			continue
		}
		out = append(out, strings.ReplaceAll(fields[3], `\\`, `\`))
	}

	return out
}
