package bethdir

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// Category suffixes. A path belongs to at most one category.
const (
	meshSuffix            = ".nif"
	heightMapSuffix       = "_p.dds"
	complexMaterialSuffix = "_m.dds"
	configSuffix          = ".json"
)

// Config lookup keys for per-category rules.
const (
	meshLookupKey            = "nif_lookup"
	heightMapLookupKey       = "parallax_lookup"
	complexMaterialLookupKey = "complexmaterial_lookup"
	fragmentLookupKey        = "truepbr_cfg_lookup"
)

// fragmentPathFields are config fragment entry fields holding file names
// that get a leading separator prefixed during preprocessing.
var fragmentPathFields = []string{"match_diffuse", "match_normal"}

// Classify runs every category finder over the populated index. LoadConfig
// must have been called first.
func (d *Directory) Classify() error {
	if d.configRaw == nil {
		return fmt.Errorf("%w: not loaded", ErrBaseConfig)
	}

	d.FindMeshes()
	d.FindHeightMaps()
	d.FindComplexMaterialMaps()
	d.FindConfigFragments()

	return nil
}

// FindMeshes collects mesh paths passing the mesh rule.
func (d *Directory) FindMeshes() {
	d.log.Info().Msg("finding meshes")

	for _, path := range d.filesBySuffix(meshSuffix, d.ruleFor(meshLookupKey)) {
		d.addUnique(&d.meshes, d.meshSet, path)
	}

	d.log.Info().Msgf("found %d meshes", len(d.meshes))
}

// FindHeightMaps collects height map paths passing the height map rule.
func (d *Directory) FindHeightMaps() {
	d.log.Info().Msg("finding height maps")

	for _, path := range d.filesBySuffix(heightMapSuffix, d.ruleFor(heightMapLookupKey)) {
		d.addUnique(&d.heightMaps, d.heightSet, path)
	}

	d.log.Info().Msgf("found %d height maps", len(d.heightMaps))
}

// FindComplexMaterialMaps collects environment map paths passing the complex
// material rule and confirms each candidate by decoding it: a texture whose
// alpha channel is not uniformly opaque carries height data and is a complex
// material map, a fully opaque one is a plain environment map. Decode
// failures drop the candidate.
func (d *Directory) FindComplexMaterialMaps() {
	d.log.Info().Msg("finding complex material maps")

	candidates := d.filesBySuffix(complexMaterialSuffix, d.ruleFor(complexMaterialLookupKey))
	if d.opt.Decoder == nil && len(candidates) > 0 {
		d.log.Warn().Msg("no image decoder configured, skipping complex material confirmation")
		return
	}

	for _, path := range candidates {
		data, err := d.GetFile(path)
		if err != nil {
			d.log.Warn().Msgf("unable to read %s: %v - skipping", path, err)
			continue
		}

		info, err := d.opt.Decoder.Decode(data)
		if err != nil {
			d.log.Warn().Msgf("failed to decode %s: %v - skipping", path, err)
			continue
		}

		if !info.AlphaAllOpaque {
			d.log.Trace().Msgf("adding %s as a complex material map", path)
			d.addUnique(&d.cmMaps, d.cmSet, path)
		}
	}

	d.log.Info().Msgf("found %d complex material maps", len(d.cmMaps))
}

// FindConfigFragments collects JSON files passing the fragment rule and
// parses each into its entries. Per entry, a "texture" value is copied to
// "match_diffuse" and known file name fields get a leading path separator.
// Unparseable files are logged and skipped.
func (d *Directory) FindConfigFragments() {
	d.log.Info().Msg("finding config fragments")

	for _, path := range d.filesBySuffix(configSuffix, d.ruleFor(fragmentLookupKey)) {
		data, err := d.GetFile(path)
		if err != nil {
			d.log.Warn().Msgf("unable to read %s: %v - skipping", path, err)
			continue
		}

		var entries []map[string]any
		if err := json.Unmarshal(data, &entries); err != nil {
			d.log.Warn().Msgf("unable to parse config fragment %s: %v", path, err)
			continue
		}

		for _, entry := range entries {
			if tex, ok := entry["texture"]; ok {
				entry["match_diffuse"] = tex
			}
			for _, field := range fragmentPathFields {
				if s, ok := entry[field].(string); ok {
					entry[field] = string(filepath.Separator) + s
				}
			}
			d.fragments = append(d.fragments, entry)
		}
	}

	d.log.Info().Msgf("found %d config fragment entries", len(d.fragments))
}

// addUnique appends a normalized path unless it is already present,
// preserving insertion order.
func (d *Directory) addUnique(list *[]string, set map[string]struct{}, path string) {
	key := normalizePath(path)
	if _, ok := set[key]; ok {
		return
	}
	set[key] = struct{}{}
	*list = append(*list, key)
}

// IsMesh reports whether the path classified as a mesh.
func (d *Directory) IsMesh(path string) bool {
	_, ok := d.meshSet[normalizePath(path)]
	return ok
}

// IsHeightMap reports whether the path classified as a height map.
func (d *Directory) IsHeightMap(path string) bool {
	_, ok := d.heightSet[normalizePath(path)]
	return ok
}

// IsComplexMaterialMap reports whether the path classified as a complex
// material map.
func (d *Directory) IsComplexMaterialMap(path string) bool {
	_, ok := d.cmSet[normalizePath(path)]
	return ok
}

// Meshes returns the classified mesh paths in insertion order.
func (d *Directory) Meshes() []string {
	return d.meshes
}

// HeightMaps returns the classified height map paths in insertion order.
func (d *Directory) HeightMaps() []string {
	return d.heightMaps
}

// ComplexMaterialMaps returns the confirmed complex material map paths in
// insertion order.
func (d *Directory) ComplexMaterialMaps() []string {
	return d.cmMaps
}

// ConfigFragments returns the parsed config fragment entries.
func (d *Directory) ConfigFragments() []map[string]any {
	return d.fragments
}
