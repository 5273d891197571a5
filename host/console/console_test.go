package console

import (
	"bytes"
	"errors"
	"testing"

	"sii953x/protocol"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()
	reg := protocol.NewRegistry()
	reg.Register("topology", "sel0=%c pipe0=%c", func(*[]byte) error { return nil })
	reg.Register("cec_inject", "frame=%*s", func(*[]byte) error { return nil })
	reg.Response("status", "enabled=%c mode=%c")
	reg.AddEnumeration("source", []string{"main", "sub", "tpg", "disabled"})

	dict, err := protocol.ParseDictionary(reg.Dictionary())
	if err != nil {
		t.Fatalf("ParseDictionary: %v", err)
	}
	return NewCodec(dict)
}

func TestParse(t *testing.T) {
	l, err := Parse(`cec_inject frame="0f:86 13:00"`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if l.Name != "cec_inject" || l.Args["frame"] != "0f:86 13:00" {
		t.Errorf("Unexpected line %+v", l)
	}

	if _, err := Parse("   "); err != ErrEmptyLine {
		t.Errorf("Expected ErrEmptyLine, got %v", err)
	}
	if _, err := Parse("topology sel0"); !errors.Is(err, protocol.ErrBadArg) {
		t.Errorf("Expected ErrBadArg for a bare word, got %v", err)
	}
}

func TestEncodeResolvesEnumerations(t *testing.T) {
	c := testCodec(t)
	id, data, err := c.Encode(&Line{Name: "topology", Args: map[string]string{"sel0": "2", "pipe0": "sub"}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want, _, _ := c.dict.Lookup("topology"); id != want {
		t.Errorf("Expected id %d, got %d", want, id)
	}
	if !bytes.Equal(data, []byte{2, 1}) {
		t.Errorf("Expected [2 1], got %v", data)
	}
}

func TestEncodeErrors(t *testing.T) {
	c := testCodec(t)
	if _, _, err := c.Encode(&Line{Name: "reboot"}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
	if _, _, err := c.Encode(&Line{Name: "topology", Args: map[string]string{"sel0": "1"}}); !errors.Is(err, protocol.ErrMissingArg) {
		t.Errorf("Expected ErrMissingArg, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	c := testCodec(t)
	id, _, _ := c.dict.Lookup("status")
	got := c.Format(&protocol.Message{ID: id, Payload: []byte{1, 2}})
	if got != "status enabled=1 mode=2" {
		t.Errorf("Expected %q, got %q", "status enabled=1 mode=2", got)
	}

	got = c.Format(&protocol.Message{ID: 99, Payload: []byte{0xAB}})
	if got != "unknown id=99 data=ab" {
		t.Errorf("Unexpected format %q", got)
	}
}

func TestHelp(t *testing.T) {
	c := testCodec(t)
	lines := c.Help()
	found := false
	for _, l := range lines {
		if l == "topology sel0= pipe0=" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected topology in help, got %v", lines)
	}
}
