package runner

import (
	"errors"
	"fmt"
	"strings"
)

// Verb names a REPL command.
type Verb string

const (
	VerbNone     Verb = ""
	VerbCheck    Verb = "check"
	VerbUncheck  Verb = "uncheck"
	VerbToggle   Verb = "toggle"
	VerbExpand   Verb = "expand"
	VerbClear    Verb = "clear"
	VerbList     Verb = "ls"
	VerbSelected Verb = "selected"
	VerbHelp     Verb = "help"
	VerbQuit     Verb = "quit"
)

var aliases = map[string]Verb{
	"check":    VerbCheck,
	"c":        VerbCheck,
	"uncheck":  VerbUncheck,
	"u":        VerbUncheck,
	"toggle":   VerbToggle,
	"t":        VerbToggle,
	"x":        VerbToggle,
	"expand":   VerbExpand,
	"e":        VerbExpand,
	"clear":    VerbClear,
	"ls":       VerbList,
	"list":     VerbList,
	"selected": VerbSelected,
	"sel":      VerbSelected,
	"help":     VerbHelp,
	"?":        VerbHelp,
	"quit":     VerbQuit,
	"q":        VerbQuit,
	"exit":     VerbQuit,
}

// ErrUnknownCommand is returned for verbs the REPL does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a parsed REPL line.
type Command struct {
	Verb Verb
	// IDs are the item ids the command applies to, in input order.
	IDs []string
}

// ParseCommand parses one input line. Blank lines yield VerbNone.
// Item commands accept several ids: "check apple pear".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Verb: VerbNone}, nil
	}

	verb, ok := aliases[strings.ToLower(fields[0])]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q (type help)", ErrUnknownCommand, fields[0])
	}
	cmd := Command{Verb: verb, IDs: fields[1:]}

	switch verb {
	case VerbCheck, VerbUncheck, VerbToggle, VerbExpand:
		if len(cmd.IDs) == 0 {
			return Command{}, fmt.Errorf("%s: missing item id", verb)
		}
	default:
		if len(cmd.IDs) > 0 {
			return Command{}, fmt.Errorf("%s: takes no arguments", verb)
		}
		cmd.IDs = nil
	}
	return cmd, nil
}

// Help is the text printed by the help command.
const Help = `Commands:
  check <id>...     check items and their descendants (c)
  uncheck <id>...   uncheck items and their descendants (u)
  toggle <id>...    flip the checked state of items (t, x)
  expand <id>...    expand or collapse items (e)
  clear             uncheck everything
  ls                show the tree (list)
  selected          show the selected ids (sel)
  help              show this help (?)
  quit              leave (q, exit)`
