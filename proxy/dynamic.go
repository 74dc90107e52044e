package proxy

import (
	"fmt"
	"reflect"
)

// A Dynamic proxy reaches the members of a wrapped value by name. Members of
// the proxied interface go through the interceptor; methods and exported
// fields that only the concrete value has are non-overridable and are
// accessed directly.
type Dynamic struct {
	ic      *Interceptor
	table   *TypeTable
	binding *binding
	target  reflect.Value
}

type boundMethod struct {
	member *Member
	index  int
}

type boundField struct {
	member *Member
	index  []int
}

// A binding resolves the members of a table against one concrete type.
type binding struct {
	methods map[string]*boundMethod
	fields  map[string]*boundField
}

func (t *TypeTable) bind(concrete reflect.Type) *binding {
	if b, ok := t.bindings.Load(concrete); ok {
		return b.(*binding)
	}

	b, _ := t.bindings.LoadOrStore(concrete, t.newBinding(concrete))

	return b.(*binding)
}

func (t *TypeTable) newBinding(concrete reflect.Type) *binding {
	b := &binding{
		methods: make(map[string]*boundMethod),
		fields:  make(map[string]*boundField),
	}

	concreteName := concrete.Name()
	if concrete.Kind() == reflect.Ptr {
		concreteName = concrete.Elem().Name()
	}

	for i := 0; i < concrete.NumMethod(); i++ {
		m := concrete.Method(i)

		member, declared := t.members[m.Name]
		if !declared {
			member = &Member{
				DeclaringType: concreteName,
				Name:          m.Name,
				Kind:          Method,
				Bucket:        NonOverridable,
				Type:          withoutReceiver(m.Type),
			}
		}

		b.methods[m.Name] = &boundMethod{member: member, index: m.Index}
	}

	structType := concrete
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}

	if structType.Kind() != reflect.Struct {
		return b
	}

	for i := 0; i < structType.NumField(); i++ {
		f := structType.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}

		if _, isMethod := b.methods[f.Name]; isMethod {
			continue
		}

		b.fields[f.Name] = &boundField{
			member: &Member{
				DeclaringType: concreteName,
				Name:          f.Name,
				Kind:          PropertyGet,
				Bucket:        NonOverridable,
				Type:          f.Type,
			},
			index: f.Index,
		}
	}

	return b
}

// Table returns the table that drives the proxy.
func (d *Dynamic) Table() *TypeTable {
	return d.table
}

// Member resolves a method or field name the way Invoke, Get and Set do.
func (d *Dynamic) Member(name string) (*Member, bool) {
	if m, ok := d.binding.methods[name]; ok {
		return m.member, true
	}

	if f, ok := d.binding.fields[name]; ok {
		return f.member, true
	}

	return nil, false
}

// Invoke calls a method by name. The results exclude a trailing error result,
// which is returned as the error instead.
func (d *Dynamic) Invoke(name string, args ...any) ([]any, error) {
	m, ok := d.binding.methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no method %s",
			ErrUnknownMember, d.table.Name(), name)
	}

	fn := d.target.Method(m.index)

	in, err := arguments(fn.Type(), args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.member.QualifiedName(), err)
	}

	var results []any

	proceed := func() error {
		var callErr error
		results, callErr = splitResults(fn.Type(), fn.Call(in))

		return callErr
	}

	if m.member.Bucket == NonOverridable {
		err = proceed()
		return results, err
	}

	err = d.ic.Intercept(Call{
		Member:  m.member,
		Args:    append([]any(nil), args...),
		Proceed: proceed,
	})

	return results, err
}

// Get reads a property. Properties of the proxied interface are read through
// their getter; exported fields of the concrete value are read directly.
func (d *Dynamic) Get(name string) (any, error) {
	if m, ok := d.binding.methods[name]; ok && m.member.Kind == PropertyGet {
		var value any

		fn := d.target.Method(m.index)
		err := d.ic.Intercept(Call{
			Member: m.member,
			Proceed: func() error {
				value = fn.Call(nil)[0].Interface()
				return nil
			},
		})

		return value, err
	}

	if f, ok := d.binding.fields[name]; ok {
		return reflect.Indirect(d.target).FieldByIndex(f.index).Interface(), nil
	}

	return nil, fmt.Errorf("%w: %s has no property %s",
		ErrUnknownMember, d.table.Name(), name)
}

// Set writes a property. Properties of the proxied interface are written
// through their setter and reported; exported fields of the concrete value are
// written directly. Fields can only be written when the wrapped value is a
// pointer.
func (d *Dynamic) Set(name string, value any) error {
	if m, ok := d.binding.methods["Set"+name]; ok && m.member.Kind == PropertySet {
		fn := d.target.Method(m.index)

		in, err := arguments(fn.Type(), []any{value})
		if err != nil {
			return fmt.Errorf("%s: %w", m.member.QualifiedName(), err)
		}

		return d.ic.Intercept(Call{
			Member: m.member,
			Args:   []any{value},
			Proceed: func() error {
				_, err := splitResults(fn.Type(), fn.Call(in))
				return err
			},
		})
	}

	if f, ok := d.binding.fields[name]; ok {
		field := reflect.Indirect(d.target).FieldByIndex(f.index)
		if !field.CanSet() {
			return fmt.Errorf("%w: field %s is not settable",
				ErrArgument, f.member.QualifiedName())
		}

		v, err := argument(field.Type(), value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.member.QualifiedName(), err)
		}

		field.Set(v)

		return nil
	}

	return fmt.Errorf("%w: %s has no property %s",
		ErrUnknownMember, d.table.Name(), name)
}

func withoutReceiver(fn reflect.Type) reflect.Type {
	in := make([]reflect.Type, 0, fn.NumIn()-1)
	for i := 1; i < fn.NumIn(); i++ {
		in = append(in, fn.In(i))
	}

	out := make([]reflect.Type, 0, fn.NumOut())
	for i := 0; i < fn.NumOut(); i++ {
		out = append(out, fn.Out(i))
	}

	return reflect.FuncOf(in, out, fn.IsVariadic())
}

func arguments(fn reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := fn.NumIn()

	if fn.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, fmt.Errorf("%w: want at least %d arguments, got %d",
				ErrArgument, numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, fmt.Errorf("%w: want %d arguments, got %d",
			ErrArgument, numIn, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		paramType := paramTypeAt(fn, i)

		v, err := argument(paramType, arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}

		in[i] = v
	}

	return in, nil
}

func paramTypeAt(fn reflect.Type, i int) reflect.Type {
	last := fn.NumIn() - 1
	if fn.IsVariadic() && i >= last {
		return fn.In(last).Elem()
	}

	return fn.In(i)
}

func argument(paramType reflect.Type, arg any) (reflect.Value, error) {
	if arg == nil {
		switch paramType.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map,
			reflect.Func, reflect.Chan:
			return reflect.Zero(paramType), nil
		default:
			return reflect.Value{}, fmt.Errorf("%w: nil is not a %v",
				ErrArgument, paramType)
		}
	}

	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(paramType) {
		return reflect.Value{}, fmt.Errorf("%w: %v is not assignable to %v",
			ErrArgument, v.Type(), paramType)
	}

	return v, nil
}

func splitResults(fn reflect.Type, out []reflect.Value) ([]any, error) {
	n := len(out)

	var err error
	if n > 0 && fn.Out(n-1) == errorType {
		if e := out[n-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
		n--
	}

	results := make([]any, n)
	for i := 0; i < n; i++ {
		results[i] = out[i].Interface()
	}

	return results, err
}
