// Package loader builds unresolved packages from YAML model files. A model file
// holds one or more YAML documents, each describing a package with its fields,
// functions, types, annotation definitions and nested packages. Types are
// written as type expression strings and are parsed but not resolved, resolving
// is left to the resolve package.
package loader

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tanema/typhon/src/parse"
	"github.com/tanema/typhon/src/types"
)

type (
	// scalar is a YAML string that remembers where it was written.
	scalar struct {
		Value  string
		Line   int
		Column int
	}
	packageDisk struct {
		Name           scalar              `yaml:"package"`
		Annotations    []scalar            `yaml:"annotations"`
		AnnotationDefs []annotationDefDisk `yaml:"annotationDefs"`
		Fields         []fieldDisk         `yaml:"fields"`
		Functions      []functionDisk      `yaml:"functions"`
		Types          []typeDisk          `yaml:"types"`
		Packages       []packageDisk       `yaml:"packages"`
	}
	typeDisk struct {
		Name        scalar         `yaml:"name"`
		Parents     []scalar       `yaml:"parents"`
		Templates   []templateDisk `yaml:"templates"`
		Annotations []scalar       `yaml:"annotations"`
		Fields      []fieldDisk    `yaml:"fields"`
		Functions   []functionDisk `yaml:"functions"`
		Types       []typeDisk     `yaml:"types"`
	}
	templateDisk struct {
		Name    scalar  `yaml:"name"`
		Base    *scalar `yaml:"base"`
		Default *scalar `yaml:"default"`
	}
	functionDisk struct {
		Name        scalar         `yaml:"name"`
		Templates   []templateDisk `yaml:"templates"`
		Params      []paramDisk    `yaml:"params"`
		Returns     []scalar       `yaml:"returns"`
		Form        string         `yaml:"form"`
		Body        []string       `yaml:"body"`
		Annotations []scalar       `yaml:"annotations"`
	}
	paramDisk struct {
		Name        scalar   `yaml:"name"`
		Type        *scalar  `yaml:"type"`
		Annotations []scalar `yaml:"annotations"`
	}
	fieldDisk struct {
		Name        scalar   `yaml:"name"`
		Type        *scalar  `yaml:"type"`
		Annotations []scalar `yaml:"annotations"`
	}
	annotationDefDisk struct {
		Name        scalar      `yaml:"name"`
		Params      []paramDisk `yaml:"params"`
		Annotations []scalar    `yaml:"annotations"`
	}
	builder struct {
		prog     *types.Program
		filename string
	}
)

// UnmarshalYAML only accepts scalars. Flow syntax like [K: V] has to be quoted
// to be read as a type expression.
func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %v: expected a string, found %v, type expressions using [ ] need to be quoted", node.Line, kindName(node.Kind))
	}
	s.Value, s.Line, s.Column = node.Value, node.Line, node.Column
	return nil
}

// LoadFile reads every package in the model file at path and adds them to the
// program as subpackages of core.
func LoadFile(prog *types.Program, path string) ([]*types.Package, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loader: resolve %s", path)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, errors.Wrap(err, "loader")
	}
	defer file.Close()
	return Load(prog, path, file)
}

// Load reads every package document in src and adds them to the program as
// subpackages of core. Unknown keys and malformed type expressions are errors,
// unresolvable names are not, they are reported when the packages are resolved.
func Load(prog *types.Program, filename string, src io.Reader) ([]*types.Package, error) {
	decoder := yaml.NewDecoder(src)
	decoder.KnownFields(true)
	b := &builder{prog: prog, filename: filename}
	pkgs := []*types.Package{}
	for {
		var raw packageDisk
		if err := decoder.Decode(&raw); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "loader: parse %s", filename)
		}
		pkg, err := b.pkg(raw)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
	for _, pkg := range pkgs {
		prog.Core.AddSubpackage(pkg)
	}
	return pkgs, nil
}

func (b *builder) source(s scalar) parse.LineInfo {
	return parse.LineInfo{Filename: b.filename, Line: int64(s.Line), Column: int64(s.Column)}
}

func (b *builder) typeExpr(s *scalar) (*parse.TypeExpr, error) {
	if s == nil || s.Value == "" {
		return nil, nil
	}
	return parse.TypeAt(b.source(*s), s.Value)
}

func (b *builder) typeExprs(list []scalar) ([]*parse.TypeExpr, error) {
	exprs := make([]*parse.TypeExpr, len(list))
	for i := range list {
		expr, err := b.typeExpr(&list[i])
		if err != nil {
			return nil, err
		}
		exprs[i] = expr
	}
	return exprs, nil
}

func (b *builder) name(s scalar, what string) error {
	if s.Value == "" {
		return errors.Errorf("%s:%v:%v: %s without a name", b.filename, s.Line, s.Column, what)
	}
	return nil
}

func (b *builder) pkg(raw packageDisk) (*types.Package, error) {
	if err := b.name(raw.Name, "package"); err != nil {
		return nil, err
	}
	pkg := types.NewPackage(b.prog, b.source(raw.Name), raw.Name.Value)
	if err := b.annotate(pkg, raw.Annotations); err != nil {
		return nil, err
	}
	if err := b.members(pkg, raw.Fields, raw.Functions, raw.Types); err != nil {
		return nil, err
	}
	for _, rawDef := range raw.AnnotationDefs {
		def, err := b.annotationDef(rawDef)
		if err != nil {
			return nil, err
		}
		pkg.AddAnnotationDefinition(def)
	}
	for _, rawSub := range raw.Packages {
		sub, err := b.pkg(rawSub)
		if err != nil {
			return nil, err
		}
		pkg.AddSubpackage(sub)
	}
	return pkg, nil
}

func (b *builder) members(pkg *types.Package, fields []fieldDisk, functions []functionDisk, typs []typeDisk) error {
	for _, rawField := range fields {
		field, err := b.field(rawField)
		if err != nil {
			return err
		}
		pkg.AddField(field)
	}
	for _, rawFn := range functions {
		fn, err := b.function(rawFn)
		if err != nil {
			return err
		}
		pkg.AddFunction(fn)
	}
	for _, rawType := range typs {
		t, err := b.userType(rawType)
		if err != nil {
			return err
		}
		pkg.AddType(t)
	}
	return nil
}

func (b *builder) userType(raw typeDisk) (*types.UserType, error) {
	if err := b.name(raw.Name, "type"); err != nil {
		return nil, err
	}
	t := types.NewUserType(b.prog, b.source(raw.Name), raw.Name.Value)
	parents, err := b.typeExprs(raw.Parents)
	if err != nil {
		return nil, err
	}
	t.SetRawData(parents)
	for _, rawTmpl := range raw.Templates {
		tt, err := b.template(rawTmpl)
		if err != nil {
			return nil, err
		}
		t.AddTemplate(tt)
	}
	if err := b.annotate(t, raw.Annotations); err != nil {
		return nil, err
	}
	return t, b.members(t.TypePackage(), raw.Fields, raw.Functions, raw.Types)
}

func (b *builder) template(raw templateDisk) (*types.TemplateType, error) {
	if err := b.name(raw.Name, "template"); err != nil {
		return nil, err
	}
	base, err := b.typeExpr(raw.Base)
	if err != nil {
		return nil, err
	}
	def, err := b.typeExpr(raw.Default)
	if err != nil {
		return nil, err
	}
	return types.NewTemplateType(b.prog, b.source(raw.Name), raw.Name.Value, base, def), nil
}

func (b *builder) function(raw functionDisk) (*types.Function, error) {
	fn := types.NewFunction(b.prog, b.source(raw.Name), raw.Name.Value)
	for _, rawTmpl := range raw.Templates {
		tt, err := b.template(rawTmpl)
		if err != nil {
			return nil, err
		}
		fn.AddTemplate(tt)
	}
	for _, rawParam := range raw.Params {
		param, err := b.param(rawParam)
		if err != nil {
			return nil, err
		}
		fn.AddParam(param)
	}
	rets, err := b.typeExprs(raw.Returns)
	if err != nil {
		return nil, err
	}
	form, err := b.form(raw)
	if err != nil {
		return nil, err
	}
	fn.SetRawData(rets, form, raw.Body)
	return fn, b.annotate(fn, raw.Annotations)
}

func (b *builder) form(raw functionDisk) (types.Form, error) {
	switch raw.Form {
	case "", "stub":
		if len(raw.Body) == 0 {
			return types.FormStub, nil
		} else if raw.Form == "" {
			return types.FormBlock, nil
		}
	case "expr":
		if len(raw.Body) == 1 {
			return types.FormExpr, nil
		}
	case "block":
		return types.FormBlock, nil
	default:
		return 0, errors.Errorf("%s:%v:%v: function %s has unknown form %q", b.filename, raw.Name.Line, raw.Name.Column, raw.Name.Value, raw.Form)
	}
	return 0, errors.Errorf("%s:%v:%v: function %s with %s form cannot have %d body entries", b.filename, raw.Name.Line, raw.Name.Column, raw.Name.Value, raw.Form, len(raw.Body))
}

func (b *builder) param(raw paramDisk) (*types.Parameter, error) {
	if err := b.name(raw.Name, "parameter"); err != nil {
		return nil, err
	}
	typ, err := b.typeExpr(raw.Type)
	if err != nil {
		return nil, err
	}
	param := types.NewParameter(b.prog, b.source(raw.Name), raw.Name.Value, typ)
	return param, b.annotate(param, raw.Annotations)
}

func (b *builder) field(raw fieldDisk) (*types.Field, error) {
	if err := b.name(raw.Name, "field"); err != nil {
		return nil, err
	}
	typ, err := b.typeExpr(raw.Type)
	if err != nil {
		return nil, err
	}
	field := types.NewField(b.prog, b.source(raw.Name), raw.Name.Value, typ)
	return field, b.annotate(field, raw.Annotations)
}

func (b *builder) annotationDef(raw annotationDefDisk) (*types.AnnotationDefinition, error) {
	if err := b.name(raw.Name, "annotation definition"); err != nil {
		return nil, err
	}
	def := types.NewAnnotationDefinition(b.prog, b.source(raw.Name), raw.Name.Value)
	for _, rawParam := range raw.Params {
		param, err := b.param(rawParam)
		if err != nil {
			return nil, err
		}
		def.AddParam(param)
	}
	return def, b.annotate(def, raw.Annotations)
}

func (b *builder) annotate(entity interface{ AddAnnotation(*types.Annotation) }, names []scalar) error {
	for i := range names {
		expr, err := b.typeExpr(&names[i])
		if err != nil {
			return err
		} else if expr == nil || expr.Kind != parse.KindBasic {
			return errors.Errorf("%s:%v:%v: annotation must be a name, found %q", b.filename, names[i].Line, names[i].Column, names[i].Value)
		}
		entity.AddAnnotation(types.NewAnnotation(b.prog, expr.LineInfo, expr))
	}
	return nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.MappingNode:
		return "a mapping"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "a document"
	}
}
