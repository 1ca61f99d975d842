package player

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Command is something a key can ask the player to do.
type Command int

const (
	CommandNone Command = iota
	CommandUndo
	CommandRedo
	CommandClear
	CommandToggleTime
	CommandQuit
)

// String returns the command name shown in the status line.
func (c Command) String() string {
	switch c {
	case CommandUndo:
		return "undo"
	case CommandRedo:
		return "redo"
	case CommandClear:
		return "clear"
	case CommandToggleTime:
		return "time"
	case CommandQuit:
		return "quit"
	default:
		return "none"
	}
}

// Keymap maps keys to commands. Runes are matched for tcell.KeyRune events,
// Keys for everything else.
type Keymap struct {
	Runes map[rune]Command
	Keys  map[tcell.Key]Command
}

// DefaultKeymap binds u/Ctrl+Z to undo, r/Ctrl+Y to redo, c to clear,
// t to toggle timestamps and q/Esc/Ctrl+C to quit.
func DefaultKeymap() Keymap {
	return Keymap{
		Runes: map[rune]Command{
			'u': CommandUndo,
			'r': CommandRedo,
			'c': CommandClear,
			't': CommandToggleTime,
			'q': CommandQuit,
		},
		Keys: map[tcell.Key]Command{
			tcell.KeyCtrlZ:  CommandUndo,
			tcell.KeyCtrlY:  CommandRedo,
			tcell.KeyEscape: CommandQuit,
			tcell.KeyCtrlC:  CommandQuit,
		},
	}
}

// Lookup returns the command bound to ev.
// Some terminals report Ctrl+letter as a rune with ModCtrl; those are looked
// up as the matching control key.
func (k Keymap) Lookup(ev *tcell.EventKey) Command {
	if ev.Key() != tcell.KeyRune {
		return k.Keys[ev.Key()]
	}
	r := ev.Rune()
	if ev.Modifiers()&tcell.ModCtrl != 0 {
		if lr := unicode.ToLower(r); lr >= 'a' && lr <= 'z' {
			return k.Keys[tcell.KeyCtrlA+tcell.Key(lr-'a')]
		}
	}
	return k.Runes[r]
}
