package dao

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/gaborage/sqldao/logger"
)

// Struct tag keys read by Bind.
const (
	TagDAO = "dao"
	TagSQL = "sql"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
	rowListType = reflect.TypeFor[[]Row]()
	rowType     = reflect.TypeFor[Row]()
	int64Type   = reflect.TypeFor[int64]()
)

// Factory binds DAO structs to a connection source.
type Factory struct {
	source Source
	log    logger.Logger
}

// NewFactory returns a Factory whose bound DAOs run against source.
func NewFactory(source Source, log logger.Logger) *Factory {
	return &Factory{source: source, log: log}
}

// boundField is a validated DAO field waiting to be filled.
type boundField struct {
	index int
	name  string
	fn    reflect.Type
	desc  Descriptor
}

// Bind fills every function field of the struct pointed to by target that has
// a dao tag. The fields are resolved into descriptors once; nothing is set
// unless every tagged field is valid. The returned Dispatcher is the one the
// filled functions call into.
func (f *Factory) Bind(target any) (*Dispatcher, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fail(ErrInvalidDescriptor, fmt.Errorf("target must be a non-nil pointer to a struct, got %T", target))
	}
	sv := v.Elem()
	st := sv.Type()

	var fields []boundField
	for i := range st.NumField() {
		sf := st.Field(i)
		daoTag, ok := sf.Tag.Lookup(TagDAO)
		if !ok {
			continue
		}
		bf, err := resolveField(sf, daoTag)
		if err != nil {
			return nil, withMethod(sf.Name, err)
		}
		bf.index = i
		fields = append(fields, bf)
	}

	d := NewDispatcher(f.source, f.log)
	for _, bf := range fields {
		if err := d.Register(bf.name, bf.desc); err != nil {
			return nil, err
		}
	}
	for _, bf := range fields {
		sv.Field(bf.index).Set(reflect.MakeFunc(bf.fn, d.caller(bf.name, bf.fn, bf.desc.Shape)))
	}
	return d, nil
}

func resolveField(sf reflect.StructField, daoTag string) (boundField, error) {
	if !sf.IsExported() {
		return boundField{}, fail(ErrInvalidDescriptor, errors.New("field is not exported"))
	}
	ft := sf.Type
	if ft.Kind() != reflect.Func {
		return boundField{}, fail(ErrInvalidDescriptor, fmt.Errorf("field type %s is not a func", ft))
	}
	if ft.NumIn() == 0 || ft.In(0) != contextType {
		return boundField{}, fail(ErrInvalidDescriptor, errors.New("first parameter must be context.Context"))
	}
	if ft.NumOut() != 2 || ft.Out(1) != errorType {
		return boundField{}, fail(ErrUnsupportedReturnType, fmt.Errorf("%s must return (T, error)", ft))
	}

	desc, err := ParseDescriptor(daoTag, sf.Tag.Get(TagSQL))
	if err != nil {
		return boundField{}, err
	}
	desc.Shape = shapeOf(ft.Out(0), desc)
	if !desc.Supports() {
		return boundField{}, fail(ErrUnsupportedReturnType,
			fmt.Errorf("%s cannot return %s", desc.Kind, ft.Out(0)))
	}
	return boundField{name: sf.Name, fn: ft, desc: desc}, nil
}

// shapeOf maps a declared result type to the shape the dispatcher produces.
func shapeOf(t reflect.Type, desc Descriptor) Shape {
	switch t {
	case rowListType:
		return RowList
	case rowType:
		return SingleRow
	case int64Type:
		if desc.Kind == Insert && desc.GeneratedKey {
			return GeneratedKey
		}
		return RowCount
	default:
		return Unsupported
	}
}

// caller builds the body of a bound function: it collects the positional
// arguments, invokes method and converts the Result to the declared type.
func (d *Dispatcher) caller(method string, ft reflect.Type, shape Shape) func([]reflect.Value) []reflect.Value {
	out := ft.Out(0)
	variadic := ft.IsVariadic()

	return func(in []reflect.Value) []reflect.Value {
		ctx := context.Background()
		if !in[0].IsNil() {
			ctx = in[0].Interface().(context.Context)
		}

		args := make([]any, 0, len(in)-1)
		for i := 1; i < len(in); i++ {
			if variadic && i == len(in)-1 {
				for j := range in[i].Len() {
					args = append(args, in[i].Index(j).Interface())
				}
				continue
			}
			args = append(args, in[i].Interface())
		}

		res, err := d.Invoke(ctx, method, args...)
		if err != nil {
			return []reflect.Value{reflect.Zero(out), reflect.ValueOf(&err).Elem()}
		}

		var val reflect.Value
		switch shape {
		case RowList:
			val = reflect.ValueOf(res.Rows())
		case SingleRow:
			val = reflect.ValueOf(res.Row())
		case GeneratedKey:
			val = reflect.ValueOf(res.GeneratedKey())
		default:
			val = reflect.ValueOf(res.RowsAffected())
		}
		return []reflect.Value{val, reflect.Zero(errorType)}
	}
}
