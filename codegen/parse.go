// Package codegen writes typed reporting proxies for the interfaces declared
// in a Go source file.
package codegen

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"regexp"
	"strings"
)

// IgnoreDirective marks an interface or a method that must not be reported.
// On an interface it skips the whole interface when no names are requested.
const IgnoreDirective = "//eventreport:ignore"

// ErrUnsupported is returned for interfaces that cannot be proxied by
// generated code.
var ErrUnsupported = errors.New("unsupported interface")

type declaredInterface struct {
	spec    *ast.TypeSpec
	iface   *ast.InterfaceType
	ignored bool
}

type param struct {
	name     string
	typ      string
	variadic bool
}

type methodSpec struct {
	name    string
	params  []param
	results []string
	ignored bool
}

type interfaceSpec struct {
	name       string
	methods    []methodSpec
	declaredBy []string
}

type sourceFile struct {
	file       *ast.File
	interfaces map[string]*declaredInterface
	order      []string
}

func parseSource(filename string, src []byte) (*sourceFile, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	sf := &sourceFile{
		file:       file,
		interfaces: make(map[string]*declaredInterface),
	}

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}

		for _, spec := range genDecl.Specs {
			typeSpec := spec.(*ast.TypeSpec)

			iface, ok := typeSpec.Type.(*ast.InterfaceType)
			if !ok {
				continue
			}

			doc := typeSpec.Doc
			if doc == nil && len(genDecl.Specs) == 1 {
				doc = genDecl.Doc
			}

			sf.interfaces[typeSpec.Name.Name] = &declaredInterface{
				spec:    typeSpec,
				iface:   iface,
				ignored: hasIgnoreDirective(doc),
			}
			sf.order = append(sf.order, typeSpec.Name.Name)
		}
	}

	return sf, nil
}

func hasIgnoreDirective(groups ...*ast.CommentGroup) bool {
	for _, g := range groups {
		if g == nil {
			continue
		}

		for _, c := range g.List {
			if strings.TrimSpace(c.Text) == IgnoreDirective {
				return true
			}
		}
	}

	return false
}

// selected returns the interfaces to generate, in declaration order.
func (sf *sourceFile) selected(names []string) ([]string, error) {
	if len(names) > 0 {
		for _, name := range names {
			if _, ok := sf.interfaces[name]; !ok {
				return nil, fmt.Errorf("interface %s not found", name)
			}
		}

		return names, nil
	}

	var all []string

	for _, name := range sf.order {
		d := sf.interfaces[name]
		if d.ignored || d.spec.TypeParams != nil || isConstraint(d.iface) {
			continue
		}

		all = append(all, name)
	}

	return all, nil
}

func isConstraint(iface *ast.InterfaceType) bool {
	for _, field := range iface.Methods.List {
		if len(field.Names) == 0 {
			switch field.Type.(type) {
			case *ast.Ident, *ast.SelectorExpr:
			default:
				return true
			}
		}
	}

	return false
}

func (sf *sourceFile) describe(name string) (*interfaceSpec, error) {
	d := sf.interfaces[name]
	if d.spec.TypeParams != nil {
		return nil, fmt.Errorf("%w: %s has type parameters", ErrUnsupported, name)
	}

	spec := &interfaceSpec{name: name}
	seen := make(map[string]bool)

	err := sf.collect(name, map[string]bool{}, spec, seen)
	if err != nil {
		return nil, err
	}

	return spec, nil
}

// collect appends the methods of an interface, expanding embedded interfaces
// depth first so that the innermost declaring interface comes first.
func (sf *sourceFile) collect(
	name string,
	visiting map[string]bool,
	spec *interfaceSpec,
	seen map[string]bool,
) error {
	if visiting[name] {
		return fmt.Errorf("%w: %s embeds itself", ErrUnsupported, name)
	}

	visiting[name] = true
	defer delete(visiting, name)

	for _, field := range sf.interfaces[name].iface.Methods.List {
		if len(field.Names) == 0 {
			err := sf.embed(name, field.Type, visiting, spec, seen)
			if err != nil {
				return err
			}

			continue
		}

		fn := field.Type.(*ast.FuncType)
		ignored := hasIgnoreDirective(field.Doc, field.Comment)

		for _, n := range field.Names {
			spec.add(seen, newMethodSpec(n.Name, fn, ignored))
		}
	}

	return nil
}

func (sf *sourceFile) embed(
	name string,
	embedded ast.Expr,
	visiting map[string]bool,
	spec *interfaceSpec,
	seen map[string]bool,
) error {
	switch t := embedded.(type) {
	case *ast.Ident:
		if t.Name == "error" {
			spec.add(seen, methodSpec{
				name:    "Error",
				results: []string{"string"},
			})

			return nil
		}

		if _, ok := sf.interfaces[t.Name]; !ok {
			return fmt.Errorf("%w: %s embeds %s, which is not an interface "+
				"declared in the same file", ErrUnsupported, name, t.Name)
		}

		err := sf.collect(t.Name, visiting, spec, seen)
		if err != nil {
			return err
		}

		spec.declaredBy = appendUnique(spec.declaredBy, t.Name)

		return nil
	case *ast.SelectorExpr:
		if types.ExprString(t) == "fmt.Stringer" {
			spec.add(seen, methodSpec{
				name:    "String",
				results: []string{"string"},
			})

			return nil
		}
	}

	return fmt.Errorf("%w: %s embeds %s, declare its methods instead",
		ErrUnsupported, name, types.ExprString(embedded))
}

func (s *interfaceSpec) add(seen map[string]bool, m methodSpec) {
	if seen[m.name] {
		return
	}

	seen[m.name] = true
	s.methods = append(s.methods, m)
}

func appendUnique(list []string, s string) []string {
	for _, e := range list {
		if e == s {
			return list
		}
	}

	return append(list, s)
}

var generatedParamName = regexp.MustCompile(`^in[0-9]+$`)

// reservedNames are the identifiers that generated method bodies use.
var reservedNames = map[string]bool{
	"_":     true,
	"p":     true,
	"args":  true,
	"arg":   true,
	"err":   true,
	"proxy": true,
}

func newMethodSpec(name string, fn *ast.FuncType, ignored bool) methodSpec {
	m := methodSpec{name: name, ignored: ignored}

	for _, field := range fn.Params.List {
		typ := field.Type
		variadic := false

		if ellipsis, ok := typ.(*ast.Ellipsis); ok {
			typ = ellipsis.Elt
			variadic = true
		}

		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{ast.NewIdent("")}
		}

		for _, n := range names {
			m.params = append(m.params, param{
				name:     n.Name,
				typ:      types.ExprString(typ),
				variadic: variadic,
			})
		}
	}

	for i := range m.params {
		n := m.params[i].name
		if n == "" || reservedNames[n] || generatedParamName.MatchString(n) ||
			isResultName(n) {
			m.params[i].name = fmt.Sprintf("in%d", i)
		}
	}

	if fn.Results != nil {
		for _, field := range fn.Results.List {
			count := len(field.Names)
			if count == 0 {
				count = 1
			}

			for i := 0; i < count; i++ {
				m.results = append(m.results, types.ExprString(field.Type))
			}
		}
	}

	return m
}

var resultName = regexp.MustCompile(`^r[0-9]+$`)

func isResultName(n string) bool {
	return resultName.MatchString(n)
}
