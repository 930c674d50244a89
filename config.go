package bethdir

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/tidwall/gjson"
)

// defaultFragmentDir is the index-relative directory scanned for load-order
// supplied configuration fragments.
const defaultFragmentDir = "parallaxgen"

// LoadConfig merges the rule configuration: the base config first, then
// every JSON fragment found in the fragment directory of the virtual index,
// in discovery order. A missing or malformed base config is fatal; a
// malformed fragment is logged and skipped. The merged tree is frozen after
// a pass that converts forward slashes in every string value to the
// platform separator.
func (d *Directory) LoadConfig() error {
	d.log.Info().Msg("loading rule configs from load order")

	if d.opt.BaseConfigPath == "" {
		return fmt.Errorf("%w: no path configured", ErrBaseConfig)
	}

	data, err := os.ReadFile(d.opt.BaseConfigPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBaseConfig, err)
	}

	var base map[string]any
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("%w: %v", ErrBaseConfig, err)
	}

	d.config = make(map[string]any)
	mergeTree(d.config, base)

	count := 0
	rule := Rule{Allow: []string{d.opt.FragmentDir + "/*"}}
	for _, path := range d.filesBySuffix(configSuffix, rule) {
		frag, err := d.GetFile(path)
		if err != nil {
			d.log.Warn().Msgf("unable to read config fragment %s: %v", path, err)
			continue
		}

		var tree map[string]any
		if err := json.Unmarshal(frag, &tree); err != nil {
			d.log.Warn().Msgf("failed to parse config fragment %s: %v", path, err)
			continue
		}

		mergeTree(d.config, tree)
		count++
	}

	normalizeSeparators(d.config)

	raw, err := json.Marshal(d.config)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBaseConfig, err)
	}
	d.configRaw = raw

	d.log.Info().Msgf("loaded %d rule configs from load order", count)

	return nil
}

// mergeTree merges source into target recursively per key: objects merge,
// arrays union (target order preserved, new source items appended), anything
// else replaces. Merging a tree into itself is a no-op.
func mergeTree(target map[string]any, source map[string]any) {
	for key, value := range source {
		switch sv := value.(type) {
		case map[string]any:
			tv, ok := target[key].(map[string]any)
			if !ok {
				tv = make(map[string]any, len(sv))
				target[key] = tv
			}
			mergeTree(tv, sv)
		case []any:
			tv, ok := target[key].([]any)
			if !ok {
				target[key] = append([]any(nil), sv...)
				continue
			}
			for _, item := range sv {
				if !containsValue(tv, item) {
					tv = append(tv, item)
				}
			}
			target[key] = tv
		default:
			target[key] = value
		}
	}
}

// containsValue reports whether list holds item by value equality.
func containsValue(list []any, item any) bool {
	for _, v := range list {
		if reflect.DeepEqual(v, item) {
			return true
		}
	}

	return false
}

// normalizeSeparators walks a configuration tree and rewrites every string
// value's forward slashes to the platform separator.
func normalizeSeparators(v any) any {
	switch t := v.(type) {
	case string:
		return strings.ReplaceAll(t, "/", string(filepath.Separator))
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeSeparators(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeSeparators(e)
		}
		return t
	default:
		return v
	}
}

// ruleFor extracts one category's rule from the frozen config. The lookup
// key holds allowlist, blocklist and archive_blocklist arrays.
func (d *Directory) ruleFor(key string) Rule {
	return Rule{
		Allow:        stringList(gjson.GetBytes(d.configRaw, key+".allowlist")),
		Block:        stringList(gjson.GetBytes(d.configRaw, key+".blocklist")),
		ArchiveBlock: stringList(gjson.GetBytes(d.configRaw, key+".archive_blocklist")),
	}
}

// stringList collects the string elements of a JSON array result.
func stringList(res gjson.Result) []string {
	if !res.IsArray() {
		return nil
	}

	var out []string
	for _, v := range res.Array() {
		if v.Type == gjson.String {
			out = append(out, v.String())
		}
	}

	return out
}
