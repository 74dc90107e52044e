package proxy

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var (
	errorType    = reflect.TypeFor[error]()
	stringType   = reflect.TypeFor[string]()
	boolType     = reflect.TypeFor[bool]()
	runeType     = reflect.TypeFor[rune]()
	fmtStateType = reflect.TypeFor[fmt.State]()
)

// A TypeTable classifies every member of a proxied interface. It is built once
// per interface and is immutable afterwards.
type TypeTable struct {
	iface   reflect.Type
	name    string
	members map[string]*Member

	bindings sync.Map // reflect.Type -> *binding
}

// DescribeOption configures how a TypeTable is built.
type DescribeOption func(*describeConfig)

type describeConfig struct {
	name     string
	excluded []string
	declared []reflect.Type
}

// Exclude marks members that must never be reported.
func Exclude(names ...string) DescribeOption {
	return func(c *describeConfig) {
		c.excluded = append(c.excluded, names...)
	}
}

// DeclaredBy attributes the methods of the embedded interface E to E, so that
// they are recorded as "E::Method". When several embedded interfaces declare
// the same method, the first one wins.
func DeclaredBy[E any]() DescribeOption {
	return func(c *describeConfig) {
		c.declared = append(c.declared, reflect.TypeFor[E]())
	}
}

// Named overrides the type name used in qualified member names.
func Named(name string) DescribeOption {
	return func(c *describeConfig) {
		c.name = name
	}
}

// MustDescribe builds the TypeTable of interface T and panics if T cannot be
// described.
func MustDescribe[T any](opts ...DescribeOption) *TypeTable {
	t, err := Describe(reflect.TypeFor[T](), opts...)
	if err != nil {
		panic(err)
	}

	return t
}

// Describe builds the TypeTable of an interface type.
func Describe(iface reflect.Type, opts ...DescribeOption) (*TypeTable, error) {
	if iface == nil || iface.Kind() != reflect.Interface {
		return nil, fmt.Errorf("%w: %v", ErrNotInterface, iface)
	}

	cfg := describeConfig{name: iface.Name()}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.name == "" {
		return nil, fmt.Errorf(
			"%w: %v has no name, use Named", ErrNotInterface, iface)
	}

	declaring, err := declaringTypes(iface, cfg.declared)
	if err != nil {
		return nil, err
	}

	excluded, err := excludedSet(iface, cfg.excluded)
	if err != nil {
		return nil, err
	}

	t := &TypeTable{
		iface:   iface,
		name:    cfg.name,
		members: make(map[string]*Member, iface.NumMethod()),
	}

	for i := 0; i < iface.NumMethod(); i++ {
		m := iface.Method(i)

		declaringType := cfg.name
		if d, ok := declaring[m.Name]; ok {
			declaringType = d
		}

		member := &Member{
			DeclaringType: declaringType,
			Name:          m.Name,
			Type:          m.Type,
		}
		member.Kind, member.Bucket = classify(iface, m, excluded)

		t.members[m.Name] = member
	}

	return t, nil
}

func declaringTypes(
	iface reflect.Type,
	declared []reflect.Type,
) (map[string]string, error) {
	declaring := make(map[string]string)

	for _, e := range declared {
		if e.Kind() != reflect.Interface {
			return nil, fmt.Errorf("%w: %v", ErrNotInterface, e)
		}

		for i := 0; i < e.NumMethod(); i++ {
			m := e.Method(i)

			im, ok := iface.MethodByName(m.Name)
			if !ok || im.Type != m.Type {
				return nil, fmt.Errorf("%w: %s does not embed %s.%s",
					ErrUnknownMember, iface.Name(), e.Name(), m.Name)
			}

			if _, seen := declaring[m.Name]; !seen {
				declaring[m.Name] = e.Name()
			}
		}
	}

	return declaring, nil
}

func excludedSet(iface reflect.Type, names []string) (map[string]bool, error) {
	excluded := make(map[string]bool, len(names))

	for _, name := range names {
		if _, ok := iface.MethodByName(name); !ok {
			return nil, fmt.Errorf("%w: cannot exclude %s.%s",
				ErrUnknownMember, iface.Name(), name)
		}

		excluded[name] = true
	}

	return excluded, nil
}

func classify(
	iface reflect.Type,
	m reflect.Method,
	excluded map[string]bool,
) (MemberKind, Bucket) {
	switch {
	case isFoundational(m):
		return Method, Foundational
	case excluded[m.Name]:
		return kindOf(iface, m), Excluded
	}

	switch kind := kindOf(iface, m); kind {
	case PropertyGet:
		return kind, OverridableGet
	case PropertySet:
		return kind, OverridableSet
	default:
		return kind, OverridableMethod
	}
}

// kindOf pairs getters X() T with setters SetX(T) [error]. A getter without a
// setter, or a setter without a getter, is an ordinary method.
func kindOf(iface reflect.Type, m reflect.Method) MemberKind {
	if isGetter(m.Type) {
		setter, ok := iface.MethodByName("Set" + m.Name)
		if ok && isSetterOf(setter.Type, m.Type.Out(0)) {
			return PropertyGet
		}
	}

	if property, ok := strings.CutPrefix(m.Name, "Set"); ok && property != "" {
		getter, ok := iface.MethodByName(property)
		if ok && isGetter(getter.Type) &&
			isSetterOf(m.Type, getter.Type.Out(0)) {
			return PropertySet
		}
	}

	return Method
}

func isGetter(fn reflect.Type) bool {
	return fn.NumIn() == 0 && fn.NumOut() == 1
}

func isSetterOf(fn reflect.Type, value reflect.Type) bool {
	if fn.NumIn() != 1 || fn.IsVariadic() || fn.In(0) != value {
		return false
	}

	switch fn.NumOut() {
	case 0:
		return true
	case 1:
		return fn.Out(0) == errorType
	default:
		return false
	}
}

// isFoundational recognizes the members every Go value may carry for
// formatting, equality and hashing.
func isFoundational(m reflect.Method) bool {
	fn := m.Type

	switch m.Name {
	case "String", "GoString":
		return fn.NumIn() == 0 && fn.NumOut() == 1 && fn.Out(0) == stringType
	case "Format":
		return fn.NumIn() == 2 && fn.NumOut() == 0 &&
			fn.In(0) == fmtStateType && fn.In(1) == runeType
	case "Equal":
		return fn.NumIn() == 1 && fn.NumOut() == 1 && fn.Out(0) == boolType
	case "Hash", "HashCode":
		return fn.NumIn() == 0 && fn.NumOut() == 1 && isInteger(fn.Out(0))
	default:
		return false
	}
}

func isInteger(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

// Name returns the type name used in qualified member names.
func (t *TypeTable) Name() string {
	return t.name
}

// Interface returns the proxied interface type.
func (t *TypeTable) Interface() reflect.Type {
	return t.iface
}

// Lookup finds a member by name.
func (t *TypeTable) Lookup(name string) (*Member, bool) {
	m, ok := t.members[name]
	return m, ok
}

// Member finds a member by name. Asking for a member that the interface does
// not declare is a programming error and panics.
func (t *TypeTable) Member(name string) *Member {
	m, ok := t.members[name]
	if !ok {
		panic(fmt.Sprintf("%s has no member %s", t.name, name))
	}

	return m
}

// Members returns all members sorted by name.
func (t *TypeTable) Members() []*Member {
	members := make([]*Member, 0, len(t.members))
	for _, m := range t.members {
		members = append(members, m)
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].Name < members[j].Name
	})

	return members
}
