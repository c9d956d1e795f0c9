package typecodec

import (
	"fmt"
	"math"

	"github.com/joshuapare/symdb/db"
)

// MarshalType appends the encoding of t. A nil t, or a binding whose entity
// the resolver cannot store, is written as NullType.
func (b *Buffer) MarshalType(t Type) error {
	if err := b.enter(ErrMarshal); err != nil {
		return err
	}
	defer b.leave()

	switch t := t.(type) {
	case nil:
		b.PutByte(NullType)
	case *Binding:
		return b.marshalBinding(t)
	case *Basic:
		if t == nil {
			b.PutByte(NullType)
			return nil
		}
		b.PutByte(BasicType)
		b.PutByte(byte(t.Kind))
		b.PutShort(int16(t.Modifiers))
	case *Pointer:
		if t == nil {
			b.PutByte(NullType)
			return nil
		}
		b.PutByte(PointerType)
		b.PutByte(cvFlags(t.Const, t.Volatile))
		return b.MarshalType(t.Target)
	case *Array:
		if t == nil {
			b.PutByte(NullType)
			return nil
		}
		b.PutByte(ArrayType)
		if t.Size == nil {
			b.PutByte(0)
		} else {
			b.PutByte(flagHasSize)
			if err := b.PutValue(t.Size); err != nil {
				return err
			}
		}
		return b.MarshalType(t.Elem)
	case *Qualifier:
		if t == nil {
			b.PutByte(NullType)
			return nil
		}
		b.PutByte(QualifierType)
		b.PutByte(cvFlags(t.Const, t.Volatile))
		return b.MarshalType(t.Target)
	case *Function:
		return b.marshalFunction(t)
	case *Reference:
		if t == nil {
			b.PutByte(NullType)
			return nil
		}
		b.PutByte(ReferenceType)
		var f byte
		if t.RValue {
			f = flagRValue
		}
		b.PutByte(f)
		return b.MarshalType(t.Target)
	case *PointerToMember:
		if t == nil {
			b.PutByte(NullType)
			return nil
		}
		b.PutByte(PointerToMemberType)
		b.PutByte(cvFlags(t.Const, t.Volatile))
		if err := b.MarshalType(t.Class); err != nil {
			return err
		}
		return b.MarshalType(t.Target)
	case *PackExpansion:
		if t == nil {
			b.PutByte(NullType)
			return nil
		}
		b.PutByte(PackExpansionType)
		return b.MarshalType(t.Pattern)
	case *Problem:
		if t == nil {
			b.PutByte(NullType)
			return nil
		}
		b.PutByte(ProblemType)
		b.PutShort(t.ID)
		return b.putString(t.Arg)
	default:
		return fmt.Errorf("%w: unknown type %T", ErrMarshal, t)
	}
	return nil
}

func (b *Buffer) marshalBinding(t *Binding) error {
	rec := db.Null
	if t != nil && t.Entity != nil {
		var err error
		if rec, err = b.record(t.Entity); err != nil {
			return err
		}
	}
	if rec.IsNull() {
		b.PutByte(NullType)
		return nil
	}
	b.PutByte(BindingType)
	b.PutByte(0)
	b.PutRecPtr(rec)
	return nil
}

func (b *Buffer) marshalFunction(t *Function) error {
	if t == nil {
		b.PutByte(NullType)
		return nil
	}
	if len(t.Params) > math.MaxInt16 {
		return fmt.Errorf("%w: %d parameters", ErrMarshal, len(t.Params))
	}
	b.PutByte(FunctionType)
	f := cvFlags(t.Const, t.Volatile)
	if t.VarArgs {
		f |= flagVarArgs
	}
	b.PutByte(f)
	b.PutShort(int16(len(t.Params)))
	if err := b.MarshalType(t.Return); err != nil {
		return err
	}
	for _, p := range t.Params {
		if err := b.MarshalType(p); err != nil {
			return err
		}
	}
	return nil
}

// record asks the resolver for e's record.
func (b *Buffer) record(e Entity) (db.RecPtr, error) {
	if b.r == nil {
		return db.Null, fmt.Errorf("%w: entity %v without a resolver", ErrMarshal, e)
	}
	rec, err := b.r.RecordOf(e)
	if err != nil {
		return db.Null, fmt.Errorf("%w: resolve %v: %w", ErrMarshal, e, err)
	}
	return rec, nil
}

// entity asks the resolver for the entity at p.
func (b *Buffer) entity(p db.RecPtr) (Entity, error) {
	if b.r == nil {
		return nil, fmt.Errorf("%w: record %s without a resolver", ErrUnmarshal, p)
	}
	e, err := b.r.EntityAt(p)
	if err != nil {
		return nil, fmt.Errorf("%w: entity at %s: %w", ErrUnmarshal, p, err)
	}
	return e, nil
}

// UnmarshalType reads one type. NullType yields a nil Type.
func (b *Buffer) UnmarshalType() (Type, error) {
	if err := b.enter(ErrUnmarshal); err != nil {
		return nil, err
	}
	defer b.leave()

	tag, err := b.GetByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case NullType:
		return nil, nil
	case BindingType:
		if _, err := b.GetByte(); err != nil {
			return nil, err
		}
		rec, err := b.GetRecPtr()
		if err != nil {
			return nil, err
		}
		e, err := b.entity(rec)
		if err != nil {
			return nil, err
		}
		return &Binding{Entity: e}, nil
	case BasicType:
		kind, err := b.GetByte()
		if err != nil {
			return nil, err
		}
		mods, err := b.GetShort()
		if err != nil {
			return nil, err
		}
		return &Basic{Kind: BasicKind(kind), Modifiers: uint16(mods)}, nil
	case PointerType:
		f, target, err := b.flagsAndType()
		if err != nil {
			return nil, err
		}
		return &Pointer{Const: f&flagConst != 0, Volatile: f&flagVolatile != 0, Target: target}, nil
	case ArrayType:
		return b.unmarshalArray()
	case QualifierType:
		f, target, err := b.flagsAndType()
		if err != nil {
			return nil, err
		}
		return &Qualifier{Const: f&flagConst != 0, Volatile: f&flagVolatile != 0, Target: target}, nil
	case FunctionType:
		return b.unmarshalFunction()
	case ReferenceType:
		f, target, err := b.flagsAndType()
		if err != nil {
			return nil, err
		}
		return &Reference{RValue: f&flagRValue != 0, Target: target}, nil
	case PointerToMemberType:
		f, class, err := b.flagsAndType()
		if err != nil {
			return nil, err
		}
		target, err := b.UnmarshalType()
		if err != nil {
			return nil, err
		}
		return &PointerToMember{Const: f&flagConst != 0, Volatile: f&flagVolatile != 0, Class: class, Target: target}, nil
	case PackExpansionType:
		pattern, err := b.UnmarshalType()
		if err != nil {
			return nil, err
		}
		return &PackExpansion{Pattern: pattern}, nil
	case ProblemType:
		id, err := b.GetShort()
		if err != nil {
			return nil, err
		}
		arg, err := b.getString()
		if err != nil {
			return nil, err
		}
		return &Problem{ID: id, Arg: arg}, nil
	default:
		return nil, fmt.Errorf("%w: unknown tag 0x%02X at %d", ErrUnmarshal, tag, b.pos-1)
	}
}

func (b *Buffer) flagsAndType() (byte, Type, error) {
	f, err := b.GetByte()
	if err != nil {
		return 0, nil, err
	}
	t, err := b.UnmarshalType()
	return f, t, err
}

func (b *Buffer) unmarshalArray() (Type, error) {
	f, err := b.GetByte()
	if err != nil {
		return nil, err
	}
	a := &Array{}
	if f&flagHasSize != 0 {
		if a.Size, err = b.GetValue(); err != nil {
			return nil, err
		}
	}
	if a.Elem, err = b.UnmarshalType(); err != nil {
		return nil, err
	}
	return a, nil
}

func (b *Buffer) unmarshalFunction() (Type, error) {
	f, err := b.GetByte()
	if err != nil {
		return nil, err
	}
	n, err := b.GetShort()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: parameter count %d", ErrUnmarshal, n)
	}
	fn := &Function{
		Const:    f&flagConst != 0,
		Volatile: f&flagVolatile != 0,
		VarArgs:  f&flagVarArgs != 0,
	}
	if fn.Return, err = b.UnmarshalType(); err != nil {
		return nil, err
	}
	if n > 0 {
		fn.Params = make([]Type, n)
		for i := range fn.Params {
			if fn.Params[i], err = b.UnmarshalType(); err != nil {
				return nil, err
			}
		}
	}
	return fn, nil
}

// Marshal encodes t into a fresh byte slice.
func Marshal(r Resolver, t Type) ([]byte, error) {
	b := NewBuffer(r)
	if err := b.MarshalType(t); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshal decodes the single type at the start of data.
func Unmarshal(r Resolver, data []byte) (Type, error) {
	return NewReader(r, data).UnmarshalType()
}
