package input

import (
	"fmt"
	"sort"
	"strings"
)

// Keycodes maps key names to Linux input event codes
// (see linux/input-event-codes.h). Names are stored uppercase; Keycode
// looks them up case-insensitively.
var Keycodes = map[string]int{
	// Letters
	"A": 30, "B": 48, "C": 46, "D": 32, "E": 18, "F": 33, "G": 34,
	"H": 35, "I": 23, "J": 36, "K": 37, "L": 38, "M": 50, "N": 49,
	"O": 24, "P": 25, "Q": 16, "R": 19, "S": 31, "T": 20, "U": 22,
	"V": 47, "W": 17, "X": 45, "Y": 21, "Z": 44,

	// Digits
	"1": 2, "2": 3, "3": 4, "4": 5, "5": 6,
	"6": 7, "7": 8, "8": 9, "9": 10, "0": 11,

	// Function keys
	"F1": 59, "F2": 60, "F3": 61, "F4": 62, "F5": 63, "F6": 64,
	"F7": 65, "F8": 66, "F9": 67, "F10": 68, "F11": 87, "F12": 88,

	// Modifiers
	"CTRL":       29,
	"SHIFT":      42,
	"ALT":        56,
	"RIGHTCTRL":  97,
	"RIGHTSHIFT": 54,
	"RIGHTALT":   100,
	"SUPER":      125,

	// Control keys
	"ESC":       1,
	"TAB":       15,
	"CAPSLOCK":  58,
	"SPACE":     57,
	"ENTER":     28,
	"BACKSPACE": 14,

	// Navigation
	"UP":       103,
	"DOWN":     108,
	"LEFT":     105,
	"RIGHT":    106,
	"HOME":     102,
	"END":      107,
	"PAGEUP":   104,
	"PAGEDOWN": 109,
	"INSERT":   110,
	"DELETE":   111,

	// Punctuation
	"MINUS":      12,
	"EQUAL":      13,
	"LEFTBRACE":  26,
	"RIGHTBRACE": 27,
	"BACKSLASH":  43,
	"SEMICOLON":  39,
	"APOSTROPHE": 40,
	"GRAVE":      41,
	"COMMA":      51,
	"DOT":        52,
	"SLASH":      53,
}

// Keycode resolves a key name to its event code. Names are matched
// case-insensitively.
func Keycode(name string) (int, error) {
	code, ok := Keycodes[strings.ToUpper(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return code, nil
}

// allCodes returns every known event code in ascending order.
func allCodes() []int {
	codes := make([]int, 0, len(Keycodes))
	for _, code := range Keycodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
