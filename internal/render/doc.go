// Package render composes key images and pushes them to the device.
//
// A key renders in one of four modes depending on its spec: icon with a
// label strip at the bottom, wrapped label text only, a full-bleed icon,
// or a plain colour fill. A key with neither icon nor label nor an explicit
// colour is treated as a configuration mistake and fills red so it is
// visible on the hardware.
//
// Labels use a TTF face loaded from the configured font path, falling back
// to a built-in bitmap face when the font cannot be loaded.
package render
