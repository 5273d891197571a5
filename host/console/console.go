// Package console turns bench console lines into link commands and link
// messages back into text, using the dictionary the board reports.
package console

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"sii953x/protocol"
)

var (
	ErrEmptyLine      = errors.New("console: empty line")
	ErrUnknownCommand = errors.New("console: unknown command")
)

// Line is one parsed console line: a command name and its named arguments
type Line struct {
	Name string
	Args map[string]string
}

// Parse splits line with shell quoting rules. Every word after the command
// name must have the form name=value.
func Parse(line string) (*Line, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmptyLine
	}
	l := &Line{Name: words[0], Args: make(map[string]string, len(words)-1)}
	for _, w := range words[1:] {
		k, v, ok := strings.Cut(w, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", protocol.ErrBadArg, w)
		}
		l.Args[k] = v
	}
	return l, nil
}

// Codec encodes and decodes messages against one dictionary
type Codec struct {
	dict *protocol.Dictionary

	// enum value names, merged across every enumeration
	enums map[string]int
}

// NewCodec returns a codec for dict
func NewCodec(dict *protocol.Dictionary) *Codec {
	c := &Codec{dict: dict, enums: make(map[string]int)}
	for _, values := range dict.Enumerations {
		for name, v := range values {
			c.enums[name] = v
		}
	}
	return c
}

// Encode resolves l to a command id and its argument bytes. An integer
// argument may be given by an enumeration value name.
func (c *Codec) Encode(l *Line) (uint16, []byte, error) {
	id, params, ok := c.dict.Lookup(l.Name)
	if !ok {
		return 0, nil, fmt.Errorf("%w: %s", ErrUnknownCommand, l.Name)
	}
	args := make(map[string]string, len(l.Args))
	for k, v := range l.Args {
		if n, ok := c.enums[v]; ok {
			v = strconv.Itoa(n)
		}
		args[k] = v
	}

	out := protocol.NewScratchOutput()
	if err := protocol.EncodeArgs(out, params, args); err != nil {
		return 0, nil, fmt.Errorf("%s: %w", l.Name, err)
	}
	return id, append([]byte(nil), out.Result()...), nil
}

// Format renders a received message as "name a=1 b=2"
func (c *Codec) Format(msg *protocol.Message) string {
	name, params, ok := c.dict.Message(msg.ID)
	if !ok {
		return fmt.Sprintf("unknown id=%d data=%x", msg.ID, msg.Payload)
	}
	data := msg.Payload
	fields, err := protocol.DecodeArgs(params, &data)
	if err != nil {
		fields = append(fields, "error="+err.Error())
	}
	return strings.Join(append([]string{name}, fields...), " ")
}

// Help lists the commands with their argument names
func (c *Codec) Help() []string {
	names := c.dict.CommandNames()
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		_, params, _ := c.dict.Lookup(name)
		words := []string{name}
		for _, p := range params {
			words = append(words, p.Name+"=")
		}
		lines = append(lines, strings.Join(words, " "))
	}
	return lines
}
