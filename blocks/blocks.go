package blocks

// Global data blocks.
//
// A block is (type u32, size u32, payload).  What the payload looks like depends on the type,
// and for Player Location also on the save version.  Anything not understood is kept as raw bytes:
// new block types turn up with game patches, and a round trip must not lose them.

import (
	"bytes"
	"fmt"
	"log"

	"essdump/readers"
	"essdump/tables"
	"essdump/types"
)

type decode_func func(s *readers.Stream) (types.Payload, error)
type encode_func func(buf *bytes.Buffer, p types.Payload) error

// Codec is one registry entry: how to turn a block's bytes into a payload and back
type Codec struct {
	Name   string
	decode decode_func
	encode encode_func
}

func (c *Codec) Is_opaque() bool {
	return c.decode == nil
}

// Player Location is the one block that changed shape between versions
var player_location = map[types.FormatClass]*Codec{
	types.FC_PRE9:     {tables.Block_name(tables.BT_PLAYER_LOCATION), decode_player_location_pre9, encode_player_location_pre9},
	types.FC_STANDARD: {tables.Block_name(tables.BT_PLAYER_LOCATION), decode_player_location, encode_player_location},
}

// Everything else.  Built once; never written to afterwards.
var registry = func() map[uint32]*Codec {
	m := map[uint32]*Codec{}
	for _, t := range tables.Block_types() {
		// Opaque by default
		m[t] = &Codec{Name: tables.Block_name(t)}
	}
	m[tables.BT_MISC_STATS].decode, m[tables.BT_MISC_STATS].encode = decode_misc_stats, encode_misc_stats
	m[tables.BT_TES].decode, m[tables.BT_TES].encode = decode_tes, encode_tes
	m[tables.BT_GLOBAL_VARIABLES].decode, m[tables.BT_GLOBAL_VARIABLES].encode = decode_globals, encode_globals
	delete(m, tables.BT_PLAYER_LOCATION)
	return m
}()

// Lookup finds the codec for a block type.
// Unknown types get an opaque codec and ErrUnknownGlobalDataType, which callers are expected to shrug off.
// Player Location with no layout for the format class (i.e. FC_NONE) is ErrVersionMismatch, which they are not.
func Lookup(block_type uint32, fc types.FormatClass) (*Codec, error) {
	if block_type == tables.BT_PLAYER_LOCATION {
		c, ok := player_location[fc]
		if !ok {
			return nil, fmt.Errorf("no %v layout for %v saves: %w", tables.Block_name(block_type), fc, types.ErrVersionMismatch)
		}
		return c, nil
	}

	c, ok := registry[block_type]
	if !ok {
		return &Codec{Name: tables.Block_name(block_type)}, fmt.Errorf("block type %v: %w", block_type, types.ErrUnknownGlobalDataType)
	}
	return c, nil
}

// Decode turns exactly len(data) bytes into an entry.
//
// A structured decoder only gets to keep its result if it used every byte and encodes back to exactly
// the same bytes.  Otherwise the block is kept opaque: a half-understood block is worse than a blob.
func Decode(block_type uint32, data []byte, fc types.FormatClass) (types.GlobalDataEntry, error) {
	c, err := Lookup(block_type, fc)
	if err != nil {
		if c == nil {
			return types.GlobalDataEntry{}, err
		}
		log.Printf("Keeping %v (%v bytes) as opaque: %v", c.Name, len(data), err)
	}
	entry := types.GlobalDataEntry{Type: block_type, Name: c.Name, Payload: types.Opaque(append([]byte{}, data...))}
	if c.Is_opaque() {
		return entry, nil
	}

	s := readers.New_stream(data)
	p, err := c.decode(s)
	if err != nil {
		log.Printf("Failed to decode %v, keeping it opaque: %v", c.Name, err)
		return entry, nil
	}
	if !s.At_end() {
		log.Printf("Did not read all of %v. %v/%v bytes read, keeping it opaque", c.Name, s.Pos(), len(data))
		return entry, nil
	}
	buf := &bytes.Buffer{}
	if err := c.encode(buf, p); err != nil || !bytes.Equal(buf.Bytes(), data) {
		log.Printf("%v does not survive re-encoding, keeping it opaque", c.Name)
		return entry, nil
	}

	entry.Payload = p
	return entry, nil
}

// Encode returns the bytes of an entry's payload (not including the type and size)
func Encode(entry *types.GlobalDataEntry, fc types.FormatClass) ([]byte, error) {
	switch p := entry.Payload.(type) {
	case types.Opaque:
		return append([]byte{}, p...), nil
	case nil:
		return nil, fmt.Errorf("%v has no payload: %w", entry.Name, types.ErrMalformedRecord)
	}

	c, err := Lookup(entry.Type, fc)
	if err != nil {
		return nil, err
	}
	if c.Is_opaque() {
		return nil, fmt.Errorf("%v is stored as opaque, but the payload is %T: %w", c.Name, entry.Payload, types.ErrMalformedRecord)
	}
	buf := &bytes.Buffer{}
	err = c.encode(buf, entry.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %v: %w", c.Name, err)
	}
	return buf.Bytes(), nil
}

func wrong_payload(want string, got types.Payload) error {
	return fmt.Errorf("expected %v payload, got %T: %w", want, got, types.ErrMalformedRecord)
}
