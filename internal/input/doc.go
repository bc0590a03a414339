// Package input generates synthetic keyboard events on the host.
//
// Two backends implement the Injector interface: ExecInjector shells out to
// a ydotool-style command line tool, and UinputInjector writes events
// through a virtual /dev/uinput keyboard. Key names map to Linux input
// event codes via the Keycodes table.
//
// ReleaseAll emits a release event for every known key in a single batch.
// It is the recovery half of the package: a crash between a press and its
// release leaves the host with a key held down, and releasing keys that
// were never pressed is harmless.
package input
