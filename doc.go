/*
Package bethdir builds a deterministic, merged view of a Bethesda game data
directory: every packed archive in plugin load order plus all loose override
files, indexed into a single virtual file map where later sources win.

It reproduces the engine's override semantics (INI-declared archives first,
then per-plugin archives in load order, loose files on top), then classifies
the indexed files into semantic roles (meshes, height maps, complex material
maps, config fragments) via layered allow/block rule configs.

Locator example:

	install, err := bethdir.LocateGame(bethdir.SkyrimSE, "")
	if err != nil {
		// handle error
	}

Index example:

	d := bethdir.New(install, &bethdir.Options{
		Opener:         opener,  // archive container reader
		Decoder:        decoder, // texture decoder
		BaseConfigPath: "cfg/default.json",
	})
	if err := d.Populate(); err != nil {
		// handle error
	}
	data, err := d.GetFile(`textures\rock_n.dds`)
	if err != nil {
		// handle error
	}

Classification example:

	if err := d.LoadConfig(); err != nil {
		// handle error
	}
	if err := d.Classify(); err != nil {
		// handle error
	}
	for _, mesh := range d.Meshes() {
		_ = d.IsHeightMap(mesh)
	}

Archive containers and texture decoding are delegated to the Archive,
ArchiveOpener and ImageDecoder interfaces; the package itself reads no
archive or image bytes.
*/
package bethdir
