// Package input names the keys and modifier chords the editor reacts to.
// Key names follow the host's key event values ("Enter", "Backspace", "b").
package input

import (
	"errors"
	"fmt"
	"strings"
)

// Modifier is a set of held modifier keys.
type Modifier uint8

const (
	ModNone Modifier = 0

	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// With returns m with mod added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// String renders m as "Ctrl+Alt" style.
func (m Modifier) String() string {
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if m.Has(ModMeta) {
		parts = append(parts, "Meta")
	}
	return strings.Join(parts, "+")
}

// ModifierFromName maps a modifier name to its bit, ModNone if unknown.
func ModifierFromName(name string) Modifier {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "shift", "s":
		return ModShift
	case "ctrl", "control", "c":
		return ModCtrl
	case "alt", "option", "opt", "a":
		return ModAlt
	case "meta", "cmd", "command", "super", "m":
		return ModMeta
	}
	return ModNone
}

// ParseModifiers folds a list of modifier names into a set.
func ParseModifiers(names []string) (Modifier, error) {
	var mods Modifier
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		mod := ModifierFromName(n)
		if mod == ModNone {
			return ModNone, fmt.Errorf("%w: unknown modifier %q", ErrInvalidChord, n)
		}
		mods = mods.With(mod)
	}
	return mods, nil
}

// Well-known key names.
const (
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
)

var ErrInvalidChord = errors.New("invalid key chord")

// Chord is a key pressed together with a set of modifiers.
type Chord struct {
	Key  string
	Mods Modifier
}

// ParseChord parses "Enter", "Ctrl+b" or "Ctrl+Alt+1".
func ParseChord(text string) (Chord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Chord{}, fmt.Errorf("%w: empty", ErrInvalidChord)
	}
	// A trailing "+" is the plus key itself.
	if strings.HasSuffix(text, "++") || text == "+" {
		mods, err := ParseModifiers(strings.Split(strings.TrimSuffix(text, "++"), "+"))
		if err != nil {
			return Chord{}, err
		}
		return Chord{Key: "+", Mods: mods}, nil
	}
	parts := strings.Split(text, "+")
	key := strings.TrimSpace(parts[len(parts)-1])
	if key == "" {
		return Chord{}, fmt.Errorf("%w: %q has no key", ErrInvalidChord, text)
	}
	mods, err := ParseModifiers(parts[:len(parts)-1])
	if err != nil {
		return Chord{}, err
	}
	return Chord{Key: key, Mods: mods}, nil
}

// Matches reports whether a key event equals the chord. Single-character keys
// compare case-insensitively, since Shift already shows up in the modifiers.
func (c Chord) Matches(key string, mods Modifier) bool {
	if c.Mods != mods {
		return false
	}
	if len([]rune(c.Key)) == 1 {
		return strings.EqualFold(c.Key, key)
	}
	return c.Key == key
}

func (c Chord) String() string {
	if c.Mods == ModNone {
		return c.Key
	}
	return c.Mods.String() + "+" + c.Key
}
