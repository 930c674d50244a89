package bethdir

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

// classifyFixture builds a populated directory with loose assets, a base
// config and the fake decoder, ready for Classify.
func classifyFixture(t *testing.T) *Directory {
	t.Helper()
	install := testInstall(t)
	writeTestFile(t, filepath.Join(install.LocalAppDataPath, "loadorder.txt"), "")

	files := map[string]string{
		"meshes/clutter/barrel.nif": "nif",
		"meshes/skip/ignored.nif":   "nif",
		"textures/rock_p.dds":       "dds",
		"textures/blocked_p.dds":    "dds",
		"textures/rock_m.dds":       "alpha",
		"textures/plain_m.dds":      "opaque",
		"textures/corrupt_m.dds":    "garbage",
		"pbr/entries.json":          `[{"texture": "textures/rock.dds"}, {"match_normal": "textures/rock_n.dds"}]`,
	}
	for path, data := range files {
		writeTestFile(t, filepath.Join(install.DataPath, filepath.FromSlash(path)), data)
	}

	base := filepath.Join(install.Path, "cfg", "default.json")
	writeTestFile(t, base, `{
		"nif_lookup": {"allowlist": [], "blocklist": ["meshes/skip/*"], "archive_blocklist": []},
		"parallax_lookup": {"allowlist": ["textures/*"], "blocklist": ["*blocked*"], "archive_blocklist": []},
		"complexmaterial_lookup": {"allowlist": ["textures/*"], "blocklist": [], "archive_blocklist": []},
		"truepbr_cfg_lookup": {"allowlist": ["pbr/*"], "blocklist": [], "archive_blocklist": []}
	}`)

	opt := quietOptions(fakeOpener{}, fakeDecoder{})
	opt.BaseConfigPath = base
	d := New(install, opt)
	if err := d.Populate(); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if err := d.LoadConfig(); err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := d.Classify(); err != nil {
		t.Fatalf("classify: %v", err)
	}

	return d
}

func TestClassifyMeshes(t *testing.T) {
	d := classifyFixture(t)

	if !d.IsMesh("meshes/clutter/barrel.nif") {
		t.Fatalf("expected barrel.nif classified as mesh")
	}
	if d.IsMesh("meshes/skip/ignored.nif") {
		t.Fatalf("blocklisted mesh must not classify")
	}
	if !reflect.DeepEqual(d.Meshes(), []string{"meshes/clutter/barrel.nif"}) {
		t.Fatalf("meshes = %v", d.Meshes())
	}
}

func TestClassifyHeightMaps(t *testing.T) {
	d := classifyFixture(t)

	if !d.IsHeightMap("textures/rock_p.dds") {
		t.Fatalf("expected rock_p.dds classified as height map")
	}
	if d.IsHeightMap("textures/blocked_p.dds") {
		t.Fatalf("blocklisted height map must not classify")
	}
	if !d.IsHeightMap(`Textures\Rock_P.DDS`) {
		t.Fatalf("height map lookup must be case-insensitive")
	}
}

func TestClassifyComplexMaterialMaps(t *testing.T) {
	d := classifyFixture(t)

	if !d.IsComplexMaterialMap("textures/rock_m.dds") {
		t.Fatalf("texture with alpha variation must confirm")
	}
	if d.IsComplexMaterialMap("textures/plain_m.dds") {
		t.Fatalf("all-opaque texture must not confirm")
	}
	if d.IsComplexMaterialMap("textures/corrupt_m.dds") {
		t.Fatalf("undecodable texture must be dropped, not confirmed")
	}
	if !reflect.DeepEqual(d.ComplexMaterialMaps(), []string{"textures/rock_m.dds"}) {
		t.Fatalf("complex material maps = %v", d.ComplexMaterialMaps())
	}
}

func TestClassifyConfigFragments(t *testing.T) {
	d := classifyFixture(t)

	fragments := d.ConfigFragments()
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragment entries, got %d", len(fragments))
	}

	sep := string(filepath.Separator)
	first := fragments[0]
	if first["match_diffuse"] != sep+"textures/rock.dds" {
		t.Fatalf("texture field not copied and prefixed: %v", first["match_diffuse"])
	}
	second := fragments[1]
	if second["match_normal"] != sep+"textures/rock_n.dds" {
		t.Fatalf("file name field not prefixed: %v", second["match_normal"])
	}
}

func TestClassifyWithoutConfig(t *testing.T) {
	install := testInstall(t)
	d := New(install, quietOptions(nil, nil))

	if err := d.Classify(); !errors.Is(err, ErrBaseConfig) {
		t.Fatalf("expected ErrBaseConfig, got %v", err)
	}
}

func TestClassifyNoDecoder(t *testing.T) {
	install := testInstall(t)
	writeTestFile(t, filepath.Join(install.LocalAppDataPath, "loadorder.txt"), "")
	writeTestFile(t, filepath.Join(install.DataPath, "textures", "rock_m.dds"), "alpha")
	base := filepath.Join(install.Path, "cfg", "default.json")
	writeTestFile(t, base, `{"complexmaterial_lookup": {"allowlist": [], "blocklist": []}}`)

	opt := quietOptions(nil, nil)
	opt.BaseConfigPath = base
	d := New(install, opt)
	if err := d.Populate(); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if err := d.LoadConfig(); err != nil {
		t.Fatalf("load config: %v", err)
	}

	d.FindComplexMaterialMaps()
	if len(d.ComplexMaterialMaps()) != 0 {
		t.Fatalf("no decoder must confirm nothing, got %v", d.ComplexMaterialMaps())
	}
}
