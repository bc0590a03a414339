// Package config loads and validates the deckhand configuration.
//
// Configuration is read from a single YAML file describing the device,
// rendering, input backend, press-history database, logging, shared
// filesystem paths and the key layouts themselves. Defaults are applied
// first, then file values, then DECKHAND_* environment variable overrides,
// so a deployment can adjust individual settings without editing the file.
//
// Validate collects every problem it finds rather than stopping at the
// first, so a broken configuration can be fixed in a single pass.
package config
