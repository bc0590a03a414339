// Package actions binds configured action specs to executable behaviour.
//
// Binding happens once at startup, so every problem a spec can have
// (unknown action type, unknown key name, unresolvable path placeholder,
// a text action on a backend that cannot type) fails before the device
// renders rather than on first press.
//
// Command arguments may reference the shared paths section of the config
// as {path:name}; placeholders are expanded at bind time.
package actions
