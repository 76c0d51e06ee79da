// internal/register/catalog.go
package register

import (
	"fmt"
	"sort"
)

// Catalog is an immutable, address-ordered register table.
type Catalog struct {
	defs     []Definition
	index    map[uint16]int
	writable map[uint16]WritableSpec
	alarms   map[uint16]AlarmBitMap
}

// NewCatalog validates the tables and returns a catalog ordered by address.
// Inputs are copied; later mutation by the caller has no effect.
func NewCatalog(defs []Definition, writable map[uint16]WritableSpec, alarms map[uint16]AlarmBitMap) (*Catalog, error) {
	c := &Catalog{
		defs:     make([]Definition, len(defs)),
		index:    make(map[uint16]int, len(defs)),
		writable: make(map[uint16]WritableSpec, len(writable)),
		alarms:   make(map[uint16]AlarmBitMap, len(alarms)),
	}
	copy(c.defs, defs)
	sort.Slice(c.defs, func(i, j int) bool { return c.defs[i].Address < c.defs[j].Address })

	for i, d := range c.defs {
		if _, dup := c.index[d.Address]; dup {
			return nil, fmt.Errorf("register: duplicate address %d", d.Address)
		}
		if err := checkDefinition(d); err != nil {
			return nil, err
		}
		c.index[d.Address] = i
	}

	for addr, ws := range writable {
		i, ok := c.index[addr]
		if !ok {
			return nil, fmt.Errorf("register: writable address %d not in catalog", addr)
		}
		if ws.Min > ws.Max {
			return nil, fmt.Errorf("register: writable %d: min %v > max %v", addr, ws.Min, ws.Max)
		}
		if t := c.defs[i].Type; t != Uint16 && t != Int16 {
			return nil, fmt.Errorf("register: writable %d: type %s is not single-word numeric", addr, t)
		}
		c.writable[addr] = ws
	}

	for addr, bits := range alarms {
		i, ok := c.index[addr]
		if !ok {
			return nil, fmt.Errorf("register: alarm map address %d not in catalog", addr)
		}
		if c.defs[i].Type != Bitfield32 {
			return nil, fmt.Errorf("register: alarm map address %d is %s, want bitfield32", addr, c.defs[i].Type)
		}
		cp := make(AlarmBitMap, len(bits))
		for bit, name := range bits {
			if bit > 31 {
				return nil, fmt.Errorf("register: alarm map %d: bit %d out of range", addr, bit)
			}
			cp[bit] = name
		}
		c.alarms[addr] = cp
	}

	return c, nil
}

func checkDefinition(d Definition) error {
	if d.Name == "" {
		return fmt.Errorf("register: address %d: name required", d.Address)
	}
	switch d.Type {
	case Uint16, Int16, Uint32, Enum16, Bitfield32:
		if d.Words != d.Type.FixedWords() {
			return fmt.Errorf("register: address %d: %s needs %d words, got %d",
				d.Address, d.Type, d.Type.FixedWords(), d.Words)
		}
	case String:
		if d.Words == 0 {
			return fmt.Errorf("register: address %d: string needs at least one word", d.Address)
		}
	default:
		return fmt.Errorf("register: address %d: unknown value type %d", d.Address, uint8(d.Type))
	}
	return nil
}

// All returns the definitions in ascending address order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

func (c *Catalog) Len() int { return len(c.defs) }

// Lookup returns the definition at addr.
func (c *Catalog) Lookup(addr uint16) (Definition, bool) {
	i, ok := c.index[addr]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// Writable returns the write bounds for addr, if the register accepts writes.
func (c *Catalog) Writable(addr uint16) (WritableSpec, bool) {
	ws, ok := c.writable[addr]
	return ws, ok
}

// WritableAddresses lists writable registers in ascending order.
func (c *Catalog) WritableAddresses() []uint16 {
	out := make([]uint16, 0, len(c.writable))
	for addr := range c.writable {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AlarmBits returns the alarm map for a bitfield register. The map is shared
// and must not be modified.
func (c *Catalog) AlarmBits(addr uint16) (AlarmBitMap, bool) {
	m, ok := c.alarms[addr]
	return m, ok
}
