package codegen

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/imports"
)

const proxyImportPath = "github.com/sarchlab/eventreport/proxy"

// Generate returns Go source that declares a typed reporting proxy for each
// of the named interfaces in src and registers it with the proxy package.
// Without names, every interface in src is generated except those marked with
// IgnoreDirective, generic interfaces and type constraints.
func Generate(filename string, src []byte, names ...string) ([]byte, error) {
	sf, err := parseSource(filename, src)
	if err != nil {
		return nil, err
	}

	selected, err := sf.selected(names)
	if err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("no interface to generate in %s", filename)
	}

	g := &generator{}
	g.header(sf)

	for _, name := range selected {
		spec, err := sf.describe(name)
		if err != nil {
			return nil, err
		}

		g.proxy(spec)
	}

	out, err := imports.Process(outputName(filename), g.buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format generated code: %w\n%s",
			err, g.buf.String())
	}

	return out, nil
}

// GenerateFile generates the proxies of the interfaces in a Go file and writes
// them next to it, into a file with the _reporting.go suffix. It returns the
// path of the written file.
func GenerateFile(path string, names ...string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	out, err := Generate(path, src, names...)
	if err != nil {
		return "", err
	}

	outPath := outputName(path)

	err = os.WriteFile(outPath, out, 0644)
	if err != nil {
		return "", err
	}

	return outPath, nil
}

func outputName(path string) string {
	return strings.TrimSuffix(path, ".go") + "_reporting.go"
}

type generator struct {
	buf bytes.Buffer
}

func (g *generator) printf(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}

func (g *generator) header(sf *sourceFile) {
	g.printf("// Code generated by eventreport generate. DO NOT EDIT.\n\n")
	g.printf("package %s\n\n", sf.file.Name.Name)
	g.printf("import (\n")
	g.printf("\t%q\n", proxyImportPath)

	for _, imp := range sf.file.Imports {
		path, _ := strconv.Unquote(imp.Path.Value)
		if path == proxyImportPath {
			continue
		}

		if imp.Name != nil {
			if imp.Name.Name == "_" || imp.Name.Name == "." {
				continue
			}

			g.printf("\t%s %s\n", imp.Name.Name, imp.Path.Value)

			continue
		}

		g.printf("\t%s\n", imp.Path.Value)
	}

	g.printf(")\n")
}

type names struct {
	iface, table, structure, constructor string
}

func namesOf(iface string) names {
	upper := upperFirst(iface)

	return names{
		iface:       iface,
		table:       lowerFirst(iface) + "Table",
		structure:   "reporting" + upper,
		constructor: "newReporting" + upper,
	}
}

func (g *generator) proxy(spec *interfaceSpec) {
	n := namesOf(spec.name)

	var options []string

	for _, m := range spec.methods {
		if m.ignored {
			options = append(options, strconv.Quote(m.name))
		}
	}

	if len(options) > 0 {
		options = []string{"proxy.Exclude(" + strings.Join(options, ", ") + ")"}
	}

	for _, d := range spec.declaredBy {
		options = append(options, "proxy.DeclaredBy["+d+"]()")
	}

	g.printf("\nvar %s = proxy.MustDescribe[%s](%s)\n",
		n.table, n.iface, strings.Join(options, ", "))
	g.printf("\nfunc init() {\n")
	g.printf("\tproxy.Register[%s](%s, %s)\n", n.iface, n.table, n.constructor)
	g.printf("}\n")

	g.printf("\nvar _ %s = (*%s)(nil)\n", n.iface, n.structure)

	g.printf("\ntype %s struct {\n", n.structure)
	g.printf("\tic      *proxy.Interceptor\n")
	g.printf("\twrapped %s\n", n.iface)
	g.printf("}\n")

	g.printf("\nfunc %s(ic *proxy.Interceptor, wrapped %s) %s {\n",
		n.constructor, n.iface, n.iface)
	g.printf("\treturn &%s{ic: ic, wrapped: wrapped}\n", n.structure)
	g.printf("}\n")

	for _, m := range spec.methods {
		g.method(n, m)
	}
}

func (g *generator) method(n names, m methodSpec) {
	params := make([]param, len(m.params))
	copy(params, m.params)

	for i := range params {
		if params[i].name == n.table {
			params[i].name = fmt.Sprintf("in%d", i)
		}
	}

	g.printf("\nfunc (p *%s) %s(%s)%s {\n",
		n.structure, m.name, paramList(params), resultList(m.results))

	args := g.arguments(params)

	values := m.results
	hasErr := len(values) > 0 && values[len(values)-1] == "error"
	if hasErr {
		values = values[:len(values)-1]
	}

	resultVars := make([]string, len(values))
	for i, typ := range values {
		resultVars[i] = fmt.Sprintf("r%d", i)
		g.printf("\tvar %s %s\n", resultVars[i], typ)
	}

	call := fmt.Sprintf("p.wrapped.%s(%s)", m.name, callList(params))

	switch {
	case len(values) == 0 && !hasErr:
		g.printf("\t_ = ")
	case len(values) == 0:
		g.printf("\treturn ")
	case hasErr:
		g.printf("\terr := ")
	default:
		g.printf("\t_ = ")
	}

	g.printf("p.ic.Intercept(proxy.Call{\n")
	g.printf("\t\tMember: %s.Member(%q),\n", n.table, m.name)

	if args != "" {
		g.printf("\t\tArgs: %s,\n", args)
	}

	g.printf("\t\tProceed: func() error {\n")

	switch {
	case len(values) == 0 && !hasErr:
		g.printf("\t\t\t%s\n", call)
		g.printf("\t\t\treturn nil\n")
	case len(values) == 0:
		g.printf("\t\t\treturn %s\n", call)
	case hasErr:
		g.printf("\t\t\tvar err error\n")
		g.printf("\t\t\t%s, err = %s\n", strings.Join(resultVars, ", "), call)
		g.printf("\t\t\treturn err\n")
	default:
		g.printf("\t\t\t%s = %s\n", strings.Join(resultVars, ", "), call)
		g.printf("\t\t\treturn nil\n")
	}

	g.printf("\t\t},\n")
	g.printf("\t})\n")

	switch {
	case len(values) > 0 && hasErr:
		g.printf("\n\treturn %s, err\n", strings.Join(resultVars, ", "))
	case len(values) > 0:
		g.printf("\n\treturn %s\n", strings.Join(resultVars, ", "))
	}

	g.printf("}\n")
}

// arguments returns the expression of the recorded arguments. Variadic
// arguments are recorded one by one after the fixed ones.
func (g *generator) arguments(params []param) string {
	if len(params) == 0 {
		return ""
	}

	last := params[len(params)-1]
	fixed := params
	if last.variadic {
		fixed = params[:len(params)-1]
	}

	fixedNames := make([]string, len(fixed))
	for i, p := range fixed {
		fixedNames[i] = p.name
	}

	list := "[]any{" + strings.Join(fixedNames, ", ") + "}"
	if !last.variadic {
		return list
	}

	g.printf("\targs := %s\n", list)
	g.printf("\tfor _, arg := range %s {\n", last.name)
	g.printf("\t\targs = append(args, arg)\n")
	g.printf("\t}\n\n")

	return "args"
}

func paramList(params []param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		typ := p.typ
		if p.variadic {
			typ = "..." + typ
		}

		parts[i] = p.name + " " + typ
	}

	return strings.Join(parts, ", ")
}

func callList(params []param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.name
		if p.variadic {
			parts[i] += "..."
		}
	}

	return strings.Join(parts, ", ")
}

func resultList(results []string) string {
	switch len(results) {
	case 0:
		return ""
	case 1:
		return " " + results[0]
	default:
		return " (" + strings.Join(results, ", ") + ")"
	}
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
