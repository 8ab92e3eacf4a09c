package layout

import (
	"fmt"
	"log/slog"
	"math/bits"
	"strings"

	"github.com/skdltmxn/uedump/internal/proptype"
	"github.com/skdltmxn/uedump/internal/uobject"
)

// Builder reconstructs declarations. It holds no per-call state and may be
// shared between goroutines.
type Builder struct {
	reg   *uobject.Registry
	types *proptype.Resolver
	log   *slog.Logger
}

// NewBuilder returns a Builder. A nil logger means slog.Default().
func NewBuilder(reg *uobject.Registry, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{reg: reg, types: proptype.New(reg), log: log}
}

// Types returns the resolver used for member types.
func (b *Builder) Types() *proptype.Resolver { return b.types }

// cursor tracks the next undeclared byte and, inside a bitfield run, the
// next undeclared bit of the byte at off.
type cursor struct {
	off     int32
	bit     int32
	members []Member
}

// padTo declares everything between the cursor and off as filler.
func (c *cursor) padTo(off int32) {
	if c.bit > 0 {
		if c.bit < 8 {
			c.padBits(8 - c.bit)
		}
		c.bit = 0
		c.off++
	}
	if off > c.off {
		size := off - c.off
		c.members = append(c.members, Member{
			Type:     "char",
			Name:     fmt.Sprintf("UnknownData_%X", c.off),
			Offset:   c.off,
			Size:     size,
			ArrayDim: size,
			Padding:  true,
		})
		c.off = off
	}
}

func (c *cursor) padBits(n int32) {
	c.members = append(c.members, Member{
		Type:     "char",
		Name:     fmt.Sprintf("UnknownData_%X_%d", c.off, c.bit),
		Offset:   c.off,
		Size:     1,
		BitWidth: n,
		Padding:  true,
	})
	c.bit += n
}

// maskRun splits a bitfield mask into its trailing zeros and its run of
// ones. Masks that are zero or not one contiguous run are rejected.
func maskRun(mask uint8) (zeros, ones int32, ok bool) {
	if mask == 0 {
		return 0, 0, false
	}
	z := bits.TrailingZeros8(mask)
	rest := mask >> z
	o := bits.TrailingZeros8(^rest)
	if o < 8 && rest>>o != 0 {
		return 0, 0, false
	}
	return int32(z), int32(o), true
}

// Struct reconstructs the layout of st.
func (b *Builder) Struct(st uobject.Struct) (*Struct, error) {
	size := st.Size()
	if size <= 0 {
		return nil, ErrEmpty
	}

	s := &Struct{
		Addr:     st.Addr(),
		FullName: st.FullName(),
		Name:     b.reg.CppName(st.Object),
		Size:     size,
	}
	if super := st.Super(); !super.IsNull() {
		s.Super = b.reg.CppName(super.Object)
		s.Inherited = super.Size()
		s.Depends = append(s.Depends, super.Addr())
	}
	if s.Inherited < 0 || s.Inherited > size {
		return nil, fmt.Errorf("%w: %s inherits %#x of %#x bytes", ErrMalformed, s.FullName, s.Inherited, size)
	}

	c := cursor{off: s.Inherited}
	for p := range st.Properties() {
		elem, dim := p.ElementSize(), p.ArrayDim()
		total := int64(elem) * int64(dim)
		if elem <= 0 || dim <= 0 || total > int64(size) {
			return nil, fmt.Errorf("%w: %s.%s has size %#x x %d", ErrMalformed, s.FullName, p.Name(), elem, dim)
		}

		t := b.types.Resolve(p)
		m := Member{Type: t.Text, Name: p.Name(), Offset: p.Offset(), Size: int32(total)}
		if m.Offset > c.off {
			c.padTo(m.Offset)
		}

		if t.Tag == proptype.BoolProperty && t.Text != "bool" {
			bp, _ := p.AsBool()
			zeros, ones, ok := maskRun(bp.FieldMask())
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s has bit mask %#02x", ErrMalformed, s.FullName, m.Name, bp.FieldMask())
			}
			if zeros > c.bit {
				c.padBits(zeros - c.bit)
			}
			m.BitWidth = ones
			c.bit += ones
		} else {
			if dim > 1 {
				m.ArrayDim = dim
			}
			c.off += m.Size
		}

		if !t.Ref.IsNull() {
			s.Depends = append(s.Depends, t.Ref)
		}
		c.members = append(c.members, m)
	}
	c.padTo(size)

	s.Members = c.members
	s.Functions = b.Functions(st)
	return s, nil
}

// Functions returns the functions declared directly on st.
func (b *Builder) Functions(st uobject.Struct) []Function {
	var fns []Function
	for f := range st.Fields() {
		fn, ok := b.reg.AsFunction(f.Object)
		if !ok {
			continue
		}
		fns = append(fns, b.Function(fn))
	}
	return fns
}

// Function extracts the signature of fn. A function without a return
// parameter returns void.
func (b *Builder) Function(fn uobject.Function) Function {
	f := Function{
		FullName:   fn.FullName(),
		Name:       fn.Name(),
		ReturnType: "void",
		Flags:      fn.Flags(),
		Entry:      fn.Entry(),
	}
	for p := range fn.Properties() {
		flags := p.Flags()
		switch {
		case flags.Has(uobject.PropertyReturnParm):
			f.ReturnType = b.types.Resolve(p).Text
		case flags.Has(uobject.PropertyParm):
			f.Params = append(f.Params, Param{
				Type:     b.types.Resolve(p).Text,
				Name:     p.Name(),
				ArrayDim: p.ArrayDim(),
			})
		}
	}
	return f
}

// Enum extracts the members of e, each cut after its last ':'.
func (b *Builder) Enum(e uobject.Enum) (*Enum, error) {
	names := e.MemberNames()
	if len(names) == 0 {
		return nil, ErrEmpty
	}

	out := &Enum{
		Addr:     e.Addr(),
		FullName: e.FullName(),
		Name:     e.Name(),
		Members:  make([]string, len(names)),
	}
	for i, n := range names {
		if j := strings.LastIndexByte(n, ':'); j >= 0 {
			n = n[j+1:]
		}
		out.Members[i] = n
	}
	return out, nil
}
