// Package keymap loads the gesture-to-input bindings used while controlling.
//
// A keymap file is an INI file with three list-valued keys:
//
//	labels        = open!x0x?fist!x0x?point
//	key-shortcuts = KEY_Command+KEY_C!x0x?!x0x?KEY_Space
//	mouse-actions = 2!x0x?1!x0x?-1!x0x?-1!x0x?-1
//
// Entries are joined by Delimiter. Each key-shortcuts entry belongs to the
// label at the same index and holds '+'-joined key names. mouse-actions is
// either positional (entry n is the label bound to input.MouseActions[n]) or
// a list of NAME:label pairs such as MOUSE_DRAG:3.
package keymap

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/ayusman/mudra/internal/input"
)

// Delimiter separates list entries inside a keymap value.
const Delimiter = "!x0x?"

// Keymap value names.
const (
	KeyLabels       = "labels"
	KeyShortcuts    = "key-shortcuts"
	KeyMouseActions = "mouse-actions"
)

var (
	// ErrNotExist is returned when the keymap file does not exist.
	ErrNotExist = errors.New("keymap file does not exist")
	// ErrNoLabels is returned when a keymap defines no labels.
	ErrNoLabels = errors.New("keymap defines no labels")
	// ErrLengthMismatch is returned when the shortcut and label lists differ in length.
	ErrLengthMismatch = errors.New("keymap shortcut count does not match label count")
	// ErrLabelCountMismatch is returned when a classifier reports a different number of labels.
	ErrLabelCountMismatch = errors.New("classifier label count does not match keymap")
)

// Keymap binds classifier label indices to keyboard sequences or mouse actions.
type Keymap struct {
	Labels       []string
	Shortcuts    []string
	MouseActions []string

	keys  map[int][]input.Code
	mouse map[int]input.Code
}

// New builds a Keymap from its three raw lists.
func New(labels, shortcuts, mouseActions []string) (*Keymap, error) {
	if len(labels) == 0 || (len(labels) == 1 && strings.TrimSpace(labels[0]) == "") {
		return nil, ErrNoLabels
	}
	if len(shortcuts) != len(labels) {
		return nil, fmt.Errorf("%w: %d shortcuts, %d labels", ErrLengthMismatch, len(shortcuts), len(labels))
	}

	k := &Keymap{
		Labels:       labels,
		Shortcuts:    shortcuts,
		MouseActions: mouseActions,
		keys:         make(map[int][]input.Code),
		mouse:        make(map[int]input.Code),
	}

	for i, s := range shortcuts {
		if seq := parseShortcut(s); len(seq) > 0 {
			k.keys[i] = seq
		}
	}

	for i, entry := range mouseActions {
		action, label, ok := parseMouseEntry(i, entry)
		if !ok {
			continue
		}
		if _, bound := k.mouse[label]; bound {
			continue
		}
		k.mouse[label] = action
	}

	return k, nil
}

// parseShortcut turns "KEY_Command+KEY_C" into key codes. Unknown names and
// mouse names are dropped.
func parseShortcut(s string) []input.Code {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var seq []input.Code
	for _, name := range strings.Split(s, "+") {
		c, ok := input.ParseCode(strings.TrimSpace(name))
		if !ok || c.IsMouse() {
			continue
		}
		seq = append(seq, c)
	}
	return seq
}

// parseMouseEntry decodes the i-th mouse-actions entry.
func parseMouseEntry(i int, entry string) (input.Code, int, bool) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return 0, 0, false
	}

	if name, idx, found := strings.Cut(entry, ":"); found {
		action, ok := input.ParseCode(strings.TrimSpace(name))
		if !ok || !action.IsMouse() {
			return 0, 0, false
		}
		label, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil || label < 0 {
			return 0, 0, false
		}
		return action, label, true
	}

	if i >= len(input.MouseActions) {
		return 0, 0, false
	}
	label, err := strconv.Atoi(entry)
	if err != nil || label < 0 {
		return 0, 0, false
	}
	return input.MouseActions[i], label, true
}

// Load reads a keymap file.
func Load(path string) (*Keymap, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keymap: %w", err)
	}
	return Parse(data)
}

// Parse decodes keymap INI data. Values are read from the unnamed section,
// falling back to [General].
func Parse(data []byte) (*Keymap, error) {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return nil, fmt.Errorf("parse keymap: %w", err)
	}

	sec := f.Section(ini.DefaultSection)
	if !sec.HasKey(KeyLabels) {
		if general, err := f.GetSection("General"); err == nil {
			sec = general
		}
	}

	return New(
		Split(sec.Key(KeyLabels).String()),
		Split(sec.Key(KeyShortcuts).String()),
		splitOptional(sec.Key(KeyMouseActions).String()),
	)
}

// Split splits a keymap list value. An empty value is one empty entry.
func Split(s string) []string {
	return strings.Split(s, Delimiter)
}

func splitOptional(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return Split(s)
}

// Join is the inverse of Split.
func Join(entries []string) string {
	return strings.Join(entries, Delimiter)
}

// Encode writes the keymap in its file format.
func (k *Keymap) Encode(w io.Writer) error {
	f := ini.Empty()
	sec := f.Section(ini.DefaultSection)
	if _, err := sec.NewKey(KeyLabels, Join(k.Labels)); err != nil {
		return err
	}
	if _, err := sec.NewKey(KeyShortcuts, Join(k.Shortcuts)); err != nil {
		return err
	}
	if _, err := sec.NewKey(KeyMouseActions, Join(k.MouseActions)); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

// Bytes returns the encoded keymap.
func (k *Keymap) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := k.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks the keymap against the number of labels a classifier produces.
func (k *Keymap) Validate(numLabels int) error {
	if numLabels != len(k.Labels) {
		return fmt.Errorf("%w: classifier has %d, keymap has %d", ErrLabelCountMismatch, numLabels, len(k.Labels))
	}
	return nil
}

// Keys returns the key sequence bound to label.
func (k *Keymap) Keys(label int) ([]input.Code, bool) {
	seq, ok := k.keys[label]
	return seq, ok
}

// MouseAction returns the mouse action bound to label.
func (k *Keymap) MouseAction(label int) (input.Code, bool) {
	c, ok := k.mouse[label]
	return c, ok
}

// Label returns the name of label, or its index when out of range.
func (k *Keymap) Label(label int) string {
	if label >= 0 && label < len(k.Labels) {
		return k.Labels[label]
	}
	return strconv.Itoa(label)
}
