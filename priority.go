package bethdir

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// archiveExt is the packed archive file extension.
const archiveExt = ".bsa"

// iniArchiveFields are the [Archive] section fields that declare archives to
// load independently of any plugin, in the order the engine reads them.
var iniArchiveFields = []string{
	"sResourceStartUpArchiveList",
	"sResourceArchiveList",
	"sResourceArchiveList2",
	"sResourceArchiveListBeta",
}

// archivePriorityList produces the final ordered archive list, lowest
// priority first: INI-declared archives seed the list, then each plugin in
// load order contributes its matching archives. Archives on disk that end up
// unmatched cannot be ordered and are excluded with a warning.
func (d *Directory) archivePriorityList(loadOrder []string) []string {
	out := d.archivesFromINIs()

	onDisk, err := d.archivesInDataDir()
	if err != nil {
		d.log.Warn().Msgf("unable to list archives in %s: %v", d.install.DataPath, err)
	}

	seen := make(map[string]struct{}, len(out))
	for _, name := range out {
		seen[name] = struct{}{}
	}

	for _, plugin := range loadOrder {
		for _, name := range findArchivesForPlugin(onDisk, plugin) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	for _, name := range onDisk {
		if _, ok := seen[name]; !ok {
			d.log.Warn().Msgf("archive %s not loaded by any plugin", name)
		}
	}

	return out
}

// archivesFromINIs reads archive names declared in the game settings INI
// files, base first with the custom INI overriding, duplicates skipped.
func (d *Directory) archivesFromINIs() []string {
	info := gameTable[d.install.Type]
	cfg, err := ini.LooseLoad(
		filepath.Join(d.install.DocumentPath, info.iniName),
		filepath.Join(d.install.DocumentPath, info.iniCustom),
	)
	if err != nil {
		d.log.Info().Msgf("unable to read game ini files: %v", err)
		return nil
	}

	section := cfg.Section("Archive")

	var out []string
	seen := make(map[string]struct{})
	for _, field := range iniArchiveFields {
		if !section.HasKey(field) {
			d.log.Info().Msgf("no %s field in [Archive] section of game ini, ignoring", field)
			continue
		}

		for _, name := range strings.Split(section.Key(field).String(), ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	return out
}

// archivesInDataDir lists archive file names physically present in the data
// directory, extension matched case-insensitively.
func (d *Directory) archivesInDataDir() ([]string, error) {
	entries, err := os.ReadDir(d.install.DataPath)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), archiveExt) {
			continue
		}
		out = append(out, entry.Name())
	}

	return out, nil
}

// findArchivesForPlugin selects the archives associated with one plugin.
// The archive named exactly after the plugin loads before the plugin's other
// archives and is placed at the front of the match set. Any other candidate
// must follow the plugin prefix with either " -" (ancillary archives like
// "Dawnguard - Textures.bsa") or a digit run ("Dawnguard2.bsa"); a bare
// space or any other character means the name belongs to a different plugin
// sharing the prefix.
//
// TODO: confirm against the engine how archives with unrelated name patterns
// still load for some plugins (e.g. "3DNPC - Textures.bsa" alongside
// "3DNPC0.bsa".."3DNPC2.bsa").
func findArchivesForPlugin(archives []string, plugin string) []string {
	var found []string

	for _, name := range archives {
		if !strings.HasPrefix(name, plugin) {
			continue
		}

		if name == plugin+archiveExt {
			// The plugin's own archive loads before any others.
			found = append([]string{name}, found...)
			continue
		}

		rest := name[len(plugin):]
		if strings.HasPrefix(rest, " ") {
			if !strings.HasPrefix(rest, " -") {
				continue
			}
		} else if rest == "" || rest[0] < '0' || rest[0] > '9' {
			continue
		}

		found = append(found, name)
	}

	return found
}
