package protocol

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Kind is the wire type of a message parameter
type Kind uint8

const (
	KindUint Kind = iota
	KindInt
	KindByte
	KindUint16
	KindInt16
	KindBytes
)

var kindNames = map[string]Kind{
	"%u":   KindUint,
	"%i":   KindInt,
	"%c":   KindByte,
	"%hu":  KindUint16,
	"%hi":  KindInt16,
	"%*s":  KindBytes,
	"%.*s": KindBytes,
	"%s":   KindBytes,
}

// Param is one "name=%x" field of a message format
type Param struct {
	Name string
	Kind Kind
}

// ParseMessage splits a dictionary key "name a=%u b=%*s" into the message
// name and its parameters
func ParseMessage(key string) (string, []Param, error) {
	fields := strings.Fields(key)
	if len(fields) == 0 {
		return "", nil, ErrBadFormat
	}
	params := make([]Param, 0, len(fields)-1)
	for _, f := range fields[1:] {
		name, typ, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return "", nil, ErrBadFormat
		}
		k, ok := kindNames[typ]
		if !ok {
			return "", nil, ErrBadFormat
		}
		params = append(params, Param{Name: name, Kind: k})
	}
	return fields[0], params, nil
}

// EncodeArgs writes the text values in args in parameter order. Integers
// accept any strconv base prefix, byte strings are hex with optional ':'
// separators.
func EncodeArgs(out OutputBuffer, params []Param, args map[string]string) error {
	for _, p := range params {
		s, ok := args[p.Name]
		if !ok {
			return ErrMissingArg
		}
		if p.Kind == KindBytes {
			b, err := hex.DecodeString(strings.ReplaceAll(s, ":", ""))
			if err != nil {
				return ErrBadArg
			}
			EncodeVLQBytes(out, b)
			continue
		}
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return ErrBadArg
		}
		EncodeVLQInt(out, int32(v))
	}
	return nil
}

// DecodeArgs reads the parameters from data and formats them as
// "name=value" with byte strings in hex
func DecodeArgs(params []Param, data *[]byte) ([]string, error) {
	out := make([]string, 0, len(params))
	for _, p := range params {
		var s string
		switch p.Kind {
		case KindBytes:
			b, err := DecodeVLQBytes(data)
			if err != nil {
				return out, err
			}
			s = hex.EncodeToString(b)
		case KindInt, KindInt16:
			v, err := DecodeVLQInt(data)
			if err != nil {
				return out, err
			}
			s = strconv.FormatInt(int64(v), 10)
		default:
			v, err := DecodeVLQUint(data)
			if err != nil {
				return out, err
			}
			if p.Kind == KindByte {
				v &= 0xFF
			} else if p.Kind == KindUint16 {
				v &= 0xFFFF
			}
			s = strconv.FormatUint(uint64(v), 10)
		}
		out = append(out, p.Name+"="+s)
	}
	return out, nil
}
