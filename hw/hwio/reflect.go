package hwio

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// tagInfo is the parsed form of a `hwio:"..."` struct tag.
type tagInfo struct {
	hasOffset bool
	offset    uint16
	hasBank   bool
	bank      int
	hasReset  bool
	reset     uint64
	hasRWMask bool
	rwmask    uint64
	hasSize   bool
	size      int
	hasVSize  bool
	vsize     int

	readonly bool
	writeonly bool

	// rcb/wcb/pcb record whether the tag requested a read/write/peek
	// callback at all, and an optional explicit method name (e.g.
	// "pcb=PeekReg2"). When the name is empty, the default naming
	// convention Read<FIELD>/Write<FIELD>/Peek<FIELD> applies.
	rcb     bool
	rcbName string
	wcb     bool
	wcbName string
	pcb     bool
	pcbName string
}

func parseTag(tag string) (tagInfo, error) {
	var ti tagInfo
	if tag == "" {
		return ti, nil
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		key := kv[0]
		switch key {
		case "readonly":
			ti.readonly = true
		case "writeonly":
			ti.writeonly = true
		case "rcb":
			ti.rcb = true
			if len(kv) == 2 {
				ti.rcbName = kv[1]
			}
		case "wcb":
			ti.wcb = true
			if len(kv) == 2 {
				ti.wcbName = kv[1]
			}
		case "pcb":
			ti.pcb = true
			if len(kv) == 2 {
				ti.pcbName = kv[1]
			}
		case "offset":
			v, err := strconv.ParseUint(strings.TrimPrefix(kv[1], "0x"), 16, 32)
			if err != nil {
				return ti, fmt.Errorf("invalid offset %q: %w", kv[1], err)
			}
			ti.hasOffset = true
			ti.offset = uint16(v)
		case "bank":
			v, err := strconv.Atoi(kv[1])
			if err != nil {
				return ti, fmt.Errorf("invalid bank %q: %w", kv[1], err)
			}
			ti.hasBank = true
			ti.bank = v
		case "reset":
			v, err := parseHexOrDec(kv[1])
			if err != nil {
				return ti, fmt.Errorf("invalid reset %q: %w", kv[1], err)
			}
			ti.hasReset = true
			ti.reset = v
		case "rwmask":
			v, err := parseHexOrDec(kv[1])
			if err != nil {
				return ti, fmt.Errorf("invalid rwmask %q: %w", kv[1], err)
			}
			ti.hasRWMask = true
			ti.rwmask = v
		case "size":
			v, err := parseHexOrDec(kv[1])
			if err != nil {
				return ti, fmt.Errorf("invalid size %q: %w", kv[1], err)
			}
			ti.hasSize = true
			ti.size = int(v)
		case "vsize":
			v, err := parseHexOrDec(kv[1])
			if err != nil {
				return ti, fmt.Errorf("invalid vsize %q: %w", kv[1], err)
			}
			ti.hasVSize = true
			ti.vsize = int(v)
		default:
			return ti, fmt.Errorf("unknown hwio tag option %q", key)
		}
	}
	return ti, nil
}

func parseHexOrDec(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

// InitRegs walks obj's exported fields looking for a `hwio` struct tag,
// filling in each Reg8/Mem's Name/Value/RoMask/Flags and wiring Read/Write/
// Peek callback methods named Read<FIELD>/Write<FIELD>/Peek<FIELD> (field
// name upper-cased) when the tag requests them with rcb/wcb/pcb.
func InitRegs(obj any) error {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("InitRegs: obj must be a pointer to struct, got %T", obj)
	}
	sv := v.Elem()
	st := sv.Type()

	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		ti, err := parseTag(tag)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}

		fv := sv.Field(i)
		switch fv.Addr().Interface().(type) {
		case *Reg8:
			if err := initReg8(v, fv.Addr().Interface().(*Reg8), field.Name, ti); err != nil {
				return fmt.Errorf("field %s: %w", field.Name, err)
			}
		case *Mem:
			initMem(fv.Addr().Interface().(*Mem), field.Name, ti)
		case *Manual:
			initManual(fv.Addr().Interface().(*Manual), field.Name)
		case *Device:
			if err := initDevice(v, fv.Addr().Interface().(*Device), field.Name, ti); err != nil {
				return fmt.Errorf("field %s: %w", field.Name, err)
			}
		}
	}
	return nil
}

// MustInitRegs is InitRegs but panics on error, for use at program startup
// where a bad register layout is a programming bug, not a runtime condition.
func MustInitRegs(obj any) {
	if err := InitRegs(obj); err != nil {
		panic(err)
	}
}

func initReg8(recv reflect.Value, reg *Reg8, name string, ti tagInfo) error {
	reg.Name = name
	if ti.hasReset {
		if ti.reset > 0xFF {
			return fmt.Errorf("reset value 0x%x does not fit in uint8", ti.reset)
		}
		reg.Value = uint8(ti.reset)
	}
	if ti.hasRWMask {
		if ti.rwmask > 0xFF {
			return fmt.Errorf("rwmask value 0x%x does not fit in uint8", ti.rwmask)
		}
		reg.RoMask = ^uint8(ti.rwmask)
	}
	if ti.readonly {
		reg.Flags |= ReadOnlyFlag
	}
	if ti.writeonly {
		reg.Flags |= WriteOnlyFlag
	}

	upper := strings.ToUpper(name)
	if ti.wcb {
		mname := ti.wcbName
		if mname == "" {
			mname = "Write" + upper
		}
		m := recv.MethodByName(mname)
		if !m.IsValid() {
			return fmt.Errorf("wcb requested but method %s not found", mname)
		}
		fn, ok := m.Interface().(func(uint8, uint8))
		if !ok {
			return fmt.Errorf("method %s has wrong signature", mname)
		}
		reg.WriteCb = fn
	}
	if ti.rcb {
		mname := ti.rcbName
		if mname == "" {
			mname = "Read" + upper
		}
		m := recv.MethodByName(mname)
		if !m.IsValid() {
			return fmt.Errorf("rcb requested but method %s not found", mname)
		}
		fn, ok := m.Interface().(func(uint8) uint8)
		if !ok {
			return fmt.Errorf("method %s has wrong signature", mname)
		}
		reg.ReadCb = fn
	}
	if ti.pcb {
		mname := ti.pcbName
		if mname == "" {
			mname = "Peek" + upper
		}
		m := recv.MethodByName(mname)
		if !m.IsValid() {
			return fmt.Errorf("pcb requested but method %s not found", mname)
		}
		fn, ok := m.Interface().(func(uint8) uint8)
		if !ok {
			return fmt.Errorf("method %s has wrong signature", mname)
		}
		reg.PeekCb = fn
	}
	return nil
}

func initMem(m *Mem, name string, ti tagInfo) {
	if m.Name == "" {
		m.Name = name
	}
	switch {
	case ti.hasVSize:
		m.VSize = ti.vsize
	case ti.hasSize:
		m.VSize = ti.size
	}
	if m.Data == nil && m.VSize > 0 {
		m.Data = make([]byte, m.VSize)
	}
	if ti.readonly {
		m.Flags |= MemFlag8ReadOnly
	}
}

func initManual(m *Manual, name string) {
	if m.Name == "" {
		m.Name = name
	}
}

func initDevice(recv reflect.Value, d *Device, name string, ti tagInfo) error {
	if d.Name == "" {
		d.Name = name
	}
	if ti.hasSize {
		d.Size = ti.size
	}
	if ti.readonly {
		d.Flags |= ReadOnlyFlag
	}
	if ti.writeonly {
		d.Flags |= WriteOnlyFlag
	}

	upper := strings.ToUpper(name)
	if ti.rcb {
		mname := ti.rcbName
		if mname == "" {
			mname = "Read" + upper
		}
		m := recv.MethodByName(mname)
		if !m.IsValid() {
			return fmt.Errorf("rcb requested but method %s not found", mname)
		}
		fn, ok := m.Interface().(func(uint16) uint8)
		if !ok {
			return fmt.Errorf("method %s has wrong signature", mname)
		}
		d.ReadCb = fn
	}
	if ti.wcb {
		mname := ti.wcbName
		if mname == "" {
			mname = "Write" + upper
		}
		m := recv.MethodByName(mname)
		if !m.IsValid() {
			return fmt.Errorf("wcb requested but method %s not found", mname)
		}
		fn, ok := m.Interface().(func(uint16, uint8))
		if !ok {
			return fmt.Errorf("method %s has wrong signature", mname)
		}
		d.WriteCb = fn
	}
	if ti.pcb {
		mname := ti.pcbName
		if mname == "" {
			mname = "Peek" + upper
		}
		m := recv.MethodByName(mname)
		if !m.IsValid() {
			return fmt.Errorf("pcb requested but method %s not found", mname)
		}
		fn, ok := m.Interface().(func(uint16) uint8)
		if !ok {
			return fmt.Errorf("method %s has wrong signature", mname)
		}
		d.PeekCb = fn
	}
	return nil
}

type regInfo struct {
	offset uint16
	regPtr any
}

// bankGetRegs returns every hwio-tagged, offset-bearing field of obj whose
// bank tag (default 0) matches bankNum, in declaration order.
func bankGetRegs(obj any, bankNum int) ([]regInfo, error) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("bankGetRegs: obj must be a pointer to struct, got %T", obj)
	}
	sv := v.Elem()
	st := sv.Type()

	var out []regInfo
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		ti, err := parseTag(tag)
		if err != nil {
			return nil, err
		}
		if !ti.hasOffset {
			continue
		}
		bank := 0
		if ti.hasBank {
			bank = ti.bank
		}
		if bank != bankNum {
			continue
		}
		out = append(out, regInfo{offset: ti.offset, regPtr: sv.Field(i).Addr().Interface()})
	}
	return out, nil
}
