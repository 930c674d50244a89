package bethdir

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMergeTreeIdempotent(t *testing.T) {
	fragment := map[string]any{
		"parallax_lookup": map[string]any{
			"allowlist": []any{"textures/*", "landscape/*"},
			"enabled":   true,
		},
		"version": float64(2),
	}

	target := make(map[string]any)
	mergeTree(target, fragment)
	once := deepCopyTree(t, target)

	mergeTree(target, fragment)
	if !reflect.DeepEqual(target, once) {
		t.Fatalf("merging a fragment into itself changed the tree:\n%v\nvs\n%v", target, once)
	}
}

func TestMergeTreeArrayUnion(t *testing.T) {
	target := map[string]any{"list": []any{"a", "b"}}
	mergeTree(target, map[string]any{"list": []any{"b", "c"}})

	want := []any{"a", "b", "c"}
	if !reflect.DeepEqual(target["list"], want) {
		t.Fatalf("array union = %v, want %v", target["list"], want)
	}
}

func TestMergeTreeScalarReplace(t *testing.T) {
	target := map[string]any{"mode": "default", "nested": map[string]any{"keep": 1.0, "swap": "old"}}
	mergeTree(target, map[string]any{"mode": "strict", "nested": map[string]any{"swap": "new"}})

	if target["mode"] != "strict" {
		t.Fatalf("scalar not replaced: %v", target["mode"])
	}
	nested := target["nested"].(map[string]any)
	if nested["keep"] != 1.0 || nested["swap"] != "new" {
		t.Fatalf("nested merge wrong: %v", nested)
	}
}

func TestMergeTreeTypeMismatchReplaces(t *testing.T) {
	target := map[string]any{"value": "scalar"}
	mergeTree(target, map[string]any{"value": []any{"x"}})

	if !reflect.DeepEqual(target["value"], []any{"x"}) {
		t.Fatalf("type mismatch should replace, got %v", target["value"])
	}
}

func TestNormalizeSeparators(t *testing.T) {
	tree := map[string]any{
		"path":  "textures/rock_p.dds",
		"list":  []any{"a/b", 1.0},
		"inner": map[string]any{"p": "x/y/z"},
	}
	normalizeSeparators(tree)

	sep := string(filepath.Separator)
	if tree["path"] != "textures"+sep+"rock_p.dds" {
		t.Fatalf("path not normalized: %v", tree["path"])
	}
	list := tree["list"].([]any)
	if list[0] != "a"+sep+"b" || list[1] != 1.0 {
		t.Fatalf("list not normalized: %v", list)
	}
	inner := tree["inner"].(map[string]any)
	if inner["p"] != "x"+sep+"y"+sep+"z" {
		t.Fatalf("inner not normalized: %v", inner)
	}
}

func TestLoadConfigMissingBase(t *testing.T) {
	install := testInstall(t)
	d := New(install, quietOptions(nil, nil))

	if err := d.LoadConfig(); !errors.Is(err, ErrBaseConfig) {
		t.Fatalf("expected ErrBaseConfig with no path, got %v", err)
	}

	opt := quietOptions(nil, nil)
	opt.BaseConfigPath = filepath.Join(install.Path, "cfg", "default.json")
	d = New(install, opt)
	if err := d.LoadConfig(); !errors.Is(err, ErrBaseConfig) {
		t.Fatalf("expected ErrBaseConfig for missing file, got %v", err)
	}
}

func TestLoadConfigMergesFragments(t *testing.T) {
	install := testInstall(t)
	writeTestFile(t, filepath.Join(install.LocalAppDataPath, "loadorder.txt"), "")
	base := filepath.Join(install.Path, "cfg", "default.json")
	writeTestFile(t, base, `{"parallax_lookup": {"allowlist": ["textures/*"], "blocklist": []}}`)

	// One good fragment and one malformed one inside the index.
	writeTestFile(t, filepath.Join(install.DataPath, "parallaxgen", "mod.json"),
		`{"parallax_lookup": {"allowlist": ["textures/*"], "blocklist": ["*blocked*"]}}`)
	writeTestFile(t, filepath.Join(install.DataPath, "parallaxgen", "broken.json"), `{not json`)

	opt := quietOptions(nil, nil)
	opt.BaseConfigPath = base
	d := New(install, opt)
	if err := d.Populate(); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if err := d.LoadConfig(); err != nil {
		t.Fatalf("load config: %v", err)
	}

	rule := d.ruleFor(heightMapLookupKey)
	sep := string(filepath.Separator)
	wantAllow := []string{"textures" + sep + "*"}
	if !reflect.DeepEqual(rule.Allow, wantAllow) {
		t.Fatalf("allow = %v, want %v", rule.Allow, wantAllow)
	}
	if !reflect.DeepEqual(rule.Block, []string{"*blocked*"}) {
		t.Fatalf("block = %v, want [*blocked*]", rule.Block)
	}
}

// deepCopyTree copies a config tree through merge into a fresh map.
func deepCopyTree(t *testing.T, tree map[string]any) map[string]any {
	t.Helper()
	out := make(map[string]any)
	mergeTree(out, tree)
	return out
}
