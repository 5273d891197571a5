package protocol

import (
	"encoding/json"
	"strings"
)

// Handler decodes its arguments from the front of data and runs the command
type Handler func(data *[]byte) error

// Command is a registered message. Responses have no handler.
type Command struct {
	ID      uint16
	Name    string
	Format  string
	Handler Handler
}

// Key returns the dictionary key "name format"
func (c *Command) Key() string {
	if c.Format == "" {
		return c.Name
	}
	return c.Name + " " + c.Format
}

// Bootstrap message ids, fixed so the host can identify before it has the
// dictionary
const (
	IDIdentifyResponse = 0
	IDIdentify         = 1
)

// Registry maps message ids to commands and builds the link dictionary
type Registry struct {
	commands []*Command
	byName   map[string]*Command
	config   map[string]string
	enums    map[string]map[string]int
	dict     []byte
}

// NewRegistry returns a registry holding the identify bootstrap messages
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]*Command),
		config: make(map[string]string),
		enums:  make(map[string]map[string]int),
	}
	r.Response("identify_response", "offset=%u data=%*s")
	r.Register("identify", "offset=%u count=%c", nil)
	return r
}

// Register adds a host-to-board command and returns its id. Registering a
// known name replaces its handler and keeps its id.
func (r *Registry) Register(name, format string, h Handler) uint16 {
	if c, ok := r.byName[name]; ok {
		c.Handler = h
		return c.ID
	}
	c := &Command{ID: uint16(len(r.commands)), Name: name, Format: format, Handler: h}
	r.commands = append(r.commands, c)
	r.byName[name] = c
	r.dict = nil
	return c.ID
}

// Response adds a board-to-host message and returns its id
func (r *Registry) Response(name, format string) uint16 {
	return r.Register(name, format, nil)
}

// Lookup returns the message with the given id
func (r *Registry) Lookup(id uint16) (*Command, bool) {
	if int(id) >= len(r.commands) {
		return nil, false
	}
	return r.commands[id], true
}

// ID returns the id registered for name
func (r *Registry) ID(name string) (uint16, bool) {
	c, ok := r.byName[name]
	if !ok {
		return 0, false
	}
	return c.ID, true
}

// Len returns the number of registered messages
func (r *Registry) Len() int { return len(r.commands) }

// Dispatch runs the handler of command id
func (r *Registry) Dispatch(id uint16, data *[]byte) error {
	c, ok := r.Lookup(id)
	if !ok {
		return ErrUnknownCommand
	}
	if c.Handler == nil {
		return ErrNotCommand
	}
	return c.Handler(data)
}

// AddConstant publishes a named value in the dictionary config section
func (r *Registry) AddConstant(name, value string) {
	r.config[name] = value
	r.dict = nil
}

// AddEnumeration publishes names for the values of a parameter. Empty names
// are skipped.
func (r *Registry) AddEnumeration(name string, values []string) {
	m := make(map[string]int, len(values))
	for i, v := range values {
		if v != "" {
			m[v] = i
		}
	}
	r.enums[name] = m
	r.dict = nil
}

// Dictionary is the description of the link that identify returns
type Dictionary struct {
	Version      string                    `json:"version"`
	Config       map[string]string         `json:"config"`
	Commands     map[string]int            `json:"commands"`
	Responses    map[string]int            `json:"responses"`
	Enumerations map[string]map[string]int `json:"enumerations,omitempty"`
}

// Dictionary returns the JSON dictionary, built once per registry change
func (r *Registry) Dictionary() []byte {
	if r.dict != nil {
		return r.dict
	}
	d := Dictionary{
		Version:   Version,
		Config:    r.config,
		Commands:  make(map[string]int),
		Responses: make(map[string]int),
	}
	if len(r.enums) > 0 {
		d.Enumerations = r.enums
	}
	for _, c := range r.commands {
		if c.Handler == nil && c.ID != IDIdentify {
			d.Responses[c.Key()] = int(c.ID)
		} else {
			d.Commands[c.Key()] = int(c.ID)
		}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil
	}
	r.dict = b
	return b
}

// Chunk returns up to count bytes of the dictionary from offset
func (r *Registry) Chunk(offset uint32, count uint8) []byte {
	d := r.Dictionary()
	if offset >= uint32(len(d)) {
		return nil
	}
	end := min(offset+uint32(count), uint32(len(d)))
	return d[offset:end]
}

// ParseDictionary decodes a dictionary fetched with identify
func ParseDictionary(b []byte) (*Dictionary, error) {
	var d Dictionary
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Lookup returns the id and parameters of the command or response name
func (d *Dictionary) Lookup(name string) (uint16, []Param, bool) {
	for _, set := range []map[string]int{d.Commands, d.Responses} {
		for key, id := range set {
			n, params, err := ParseMessage(key)
			if err == nil && n == name {
				return uint16(id), params, true
			}
		}
	}
	return 0, nil, false
}

// Message returns the name and parameters of the message with id
func (d *Dictionary) Message(id uint16) (string, []Param, bool) {
	for _, set := range []map[string]int{d.Responses, d.Commands} {
		for key, v := range set {
			if v == int(id) {
				n, params, err := ParseMessage(key)
				return n, params, err == nil
			}
		}
	}
	return "", nil, false
}

// CommandNames returns the names of the host-to-board commands
func (d *Dictionary) CommandNames() []string {
	names := make([]string, 0, len(d.Commands))
	for key := range d.Commands {
		names = append(names, strings.Fields(key)[0])
	}
	return names
}
