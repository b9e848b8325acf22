// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// blockJSON is the wire shape of a block: {"id","type","props"}.
type blockJSON struct {
	ID    string          `json:"id"`
	Type  Type            `json:"type"`
	Props json.RawMessage `json:"props"`
}

// MarshalJSON encodes the block with its type tag.
func (b Block) MarshalJSON() ([]byte, error) {
	if b.Props == nil {
		return nil, fmt.Errorf("block %q: missing props", b.ID)
	}
	props, err := json.Marshal(b.Props)
	if err != nil {
		return nil, fmt.Errorf("marshal %s props: %w", b.Type(), err)
	}
	return json.Marshal(blockJSON{ID: b.ID, Type: b.Type(), Props: props})
}

// UnmarshalJSON decodes a block, dispatching on its type tag. Props absent
// from the JSON keep their default values.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw blockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	props, err := decodeProps(raw.Type, raw.Props)
	if err != nil {
		return err
	}
	b.ID = raw.ID
	b.Props = props
	return nil
}

// decodeProps overlays raw on the defaults for t.
func decodeProps(t Type, raw json.RawMessage) (Props, error) {
	base, err := Defaults(t)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return base, nil
	}

	switch p := base.(type) {
	case HeadingProps:
		err = json.Unmarshal(raw, &p)
		return p, wrapPropsErr(t, err)
	case TextProps:
		err = json.Unmarshal(raw, &p)
		return p, wrapPropsErr(t, err)
	case ImageProps:
		err = json.Unmarshal(raw, &p)
		return p, wrapPropsErr(t, err)
	case ButtonProps:
		err = json.Unmarshal(raw, &p)
		return p, wrapPropsErr(t, err)
	case DividerProps:
		err = json.Unmarshal(raw, &p)
		return p, wrapPropsErr(t, err)
	case SpacerProps:
		err = json.Unmarshal(raw, &p)
		return p, wrapPropsErr(t, err)
	case SocialProps:
		// A provided networks list replaces the default one rather than
		// merging element by element.
		p.Networks = nil
		err = json.Unmarshal(raw, &p)
		if err == nil && p.Networks == nil {
			p.Networks = base.(SocialProps).Networks
		}
		return p, wrapPropsErr(t, err)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

func wrapPropsErr(t Type, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("decode %s props: %w", t, err)
}

// UnmarshalDesign decodes a JSON array of blocks.
func UnmarshalDesign(data []byte) (Design, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("unmarshal design: %w", err)
	}
	d := make(Design, len(raws))
	for i, raw := range raws {
		if err := json.Unmarshal(raw, &d[i]); err != nil {
			return nil, fmt.Errorf("block at index %d: %w", i, err)
		}
	}
	return d, nil
}

// DecodeProps decodes raw props for a block of type t, overlaying them on
// the defaults. Used by the settings endpoint to update a single block.
func DecodeProps(t Type, raw json.RawMessage) (Props, error) {
	return decodeProps(t, raw)
}

// Value implements driver.Valuer so a design can be stored in a JSONB
// column. A nil design is stored as an empty array.
func (d Design) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB columns.
func (d *Design) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*d = Design{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("blocks: unsupported scan source")
	}
	decoded, err := UnmarshalDesign(data)
	if err != nil {
		return err
	}
	*d = decoded
	return nil
}
