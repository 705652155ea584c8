// Package pb encodes maze layouts and game snapshots in protobuf wire format.
package pb

import (
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/gem-maze/game"
	"github.com/beka-birhanu/gem-maze/maze"
	"google.golang.org/protobuf/encoding/protowire"
)

var _ game.Encoder = &Protobuf{}

// Layout field numbers.
const (
	layoutWidth  protowire.Number = 1
	layoutHeight protowire.Number = 2
	layoutSeed   protowire.Number = 3
	layoutWalls  protowire.Number = 4
	layoutItem   protowire.Number = 5
)

// Item field numbers.
const (
	itemX      protowire.Number = 1
	itemY      protowire.Number = 2
	itemRarity protowire.Number = 3
)

// Snapshot field numbers.
const (
	snapshotLevel     protowire.Number = 1
	snapshotState     protowire.Number = 2
	snapshotScore     protowire.Number = 3
	snapshotCollected protowire.Number = 4
	snapshotTotal     protowire.Number = 5
	snapshotPlayerX   protowire.Number = 6
	snapshotPlayerY   protowire.Number = 7
	snapshotRemaining protowire.Number = 8
	snapshotLayout    protowire.Number = 9
)

var ErrMalformed = errors.New("malformed protobuf payload")

// Protobuf implements game.Encoder.
type Protobuf struct{}

// MarshalLayout implements game.Encoder.
func (p *Protobuf) MarshalLayout(l maze.Layout) ([]byte, error) {
	if l.Width < 0 || l.Height < 0 {
		return nil, fmt.Errorf("negative layout dimensions %dx%d", l.Width, l.Height)
	}
	return appendLayout(nil, l), nil
}

// UnmarshalLayout implements game.Encoder.
func (p *Protobuf) UnmarshalLayout(b []byte) (maze.Layout, error) {
	var l maze.Layout
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == layoutWidth && typ == protowire.VarintType:
			return consumeInt(b, &l.Width)
		case num == layoutHeight && typ == protowire.VarintType:
			return consumeInt(b, &l.Height)
		case num == layoutSeed && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			l.Seed = v
			return n, protowire.ParseError(n)
		case num == layoutWalls && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			l.Walls = append([]uint8(nil), v...)
			return n, protowire.ParseError(n)
		case num == layoutItem && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			item, err := unmarshalItem(v)
			if err != nil {
				return n, err
			}
			l.Items = append(l.Items, item)
			return n, nil
		}
		return -1, nil
	})
	if err != nil {
		return maze.Layout{}, err
	}
	return l, nil
}

// MarshalSnapshot implements game.Encoder.
func (p *Protobuf) MarshalSnapshot(s game.Snapshot) ([]byte, error) {
	var b []byte
	b = appendVarint(b, snapshotLevel, uint64(s.Level))
	b = appendVarint(b, snapshotState, uint64(s.State))
	b = appendVarint(b, snapshotScore, uint64(s.Score))
	b = appendVarint(b, snapshotCollected, uint64(s.GemsCollected))
	b = appendVarint(b, snapshotTotal, uint64(s.GemsTotal))
	b = appendVarint(b, snapshotPlayerX, uint64(s.Player.X))
	b = appendVarint(b, snapshotPlayerY, uint64(s.Player.Y))
	b = appendVarint(b, snapshotRemaining, uint64(s.Remaining.Milliseconds()))
	b = protowire.AppendTag(b, snapshotLayout, protowire.BytesType)
	b = protowire.AppendBytes(b, appendLayout(nil, s.Layout))
	return b, nil
}

// UnmarshalSnapshot decodes a snapshot written by MarshalSnapshot.
func (p *Protobuf) UnmarshalSnapshot(b []byte) (game.Snapshot, error) {
	var s game.Snapshot
	var state, remainingMs int
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ == protowire.BytesType && num == snapshotLayout {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			l, err := p.UnmarshalLayout(v)
			s.Layout = l
			return n, err
		}
		if typ != protowire.VarintType {
			return -1, nil
		}
		switch num {
		case snapshotLevel:
			return consumeInt(b, &s.Level)
		case snapshotState:
			return consumeInt(b, &state)
		case snapshotScore:
			return consumeInt(b, &s.Score)
		case snapshotCollected:
			return consumeInt(b, &s.GemsCollected)
		case snapshotTotal:
			return consumeInt(b, &s.GemsTotal)
		case snapshotPlayerX:
			return consumeInt(b, &s.Player.X)
		case snapshotPlayerY:
			return consumeInt(b, &s.Player.Y)
		case snapshotRemaining:
			return consumeInt(b, &remainingMs)
		}
		return -1, nil
	})
	if err != nil {
		return game.Snapshot{}, err
	}
	s.State = game.State(state)
	s.Remaining = time.Duration(remainingMs) * time.Millisecond
	return s, nil
}

func appendLayout(b []byte, l maze.Layout) []byte {
	b = appendVarint(b, layoutWidth, uint64(l.Width))
	b = appendVarint(b, layoutHeight, uint64(l.Height))
	b = appendVarint(b, layoutSeed, l.Seed)
	b = protowire.AppendTag(b, layoutWalls, protowire.BytesType)
	b = protowire.AppendBytes(b, l.Walls)
	for _, item := range l.Items {
		var ib []byte
		ib = appendVarint(ib, itemX, uint64(item.Pos.X))
		ib = appendVarint(ib, itemY, uint64(item.Pos.Y))
		ib = appendVarint(ib, itemRarity, uint64(item.Rarity))
		b = protowire.AppendTag(b, layoutItem, protowire.BytesType)
		b = protowire.AppendBytes(b, ib)
	}
	return b
}

func unmarshalItem(b []byte) (maze.Item, error) {
	var item maze.Item
	var rarity int
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return -1, nil
		}
		switch num {
		case itemX:
			return consumeInt(b, &item.Pos.X)
		case itemY:
			return consumeInt(b, &item.Pos.Y)
		case itemRarity:
			return consumeInt(b, &rarity)
		}
		return -1, nil
	})
	if err != nil {
		return maze.Item{}, err
	}
	item.Rarity = maze.Rarity(rarity)
	item.Value = item.Rarity.Value()
	return item, nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func consumeInt(b []byte, dst *int) (int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return n, protowire.ParseError(n)
	}
	*dst = int(int64(v))
	return n, nil
}

// fieldFunc decodes the value of one field. It returns the bytes consumed, or -1 to
// have the field skipped as unknown.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// consumeFields walks every field of a message and hands it to fn.
func consumeFields(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		n, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("%w: field %d: %w", ErrMalformed, num, err)
		}
		if n == -1 {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %w", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}
