package pysrc

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Decorator is one decorator applied to a class or method. For the bare
// spelling (@component) Args and Kwargs are empty; for the call spelling the
// argument nodes are kept raw so callers can pick the literal shapes they
// accept.
type Decorator struct {
	// Name is the decorator expression without arguments, e.g. "route" or
	// "routes.get".
	Name   string
	Args   []*sitter.Node
	Kwargs map[string]*sitter.Node
	Node   *sitter.Node
}

// BaseName returns the last dotted segment of the decorator name.
func (d Decorator) BaseName() string {
	if i := strings.LastIndex(d.Name, "."); i >= 0 {
		return d.Name[i+1:]
	}
	return d.Name
}

// Class is a parsed class definition.
type Class struct {
	Name       string
	Bases      []string
	Decorators []Decorator
	Docstring  string
	Node       *sitter.Node

	file *File
	body *sitter.Node
}

// Method is a parsed function definition inside a class body.
type Method struct {
	Name       string
	Async      bool
	Decorators []Decorator
	Docstring  string
	Node       *sitter.Node

	file *File
	body *sitter.Node
}

// Body returns the method's block node, or nil.
func (m Method) Body() *sitter.Node {
	return m.body
}

// SelfAssignments returns every assignment to a self attribute in the method
// body, annotated or not, in source order. Target holds the attribute name
// without the "self." prefix.
func (m Method) SelfAssignments() []Assignment {
	if m.file == nil || m.body == nil {
		return nil
	}
	f := m.file
	var out []Assignment
	Walk(m.body, func(n *sitter.Node) bool {
		if n.Type() != "assignment" {
			return true
		}
		left := n.ChildByFieldName("left")
		if left == nil || left.Type() != "attribute" {
			return true
		}
		obj := left.ChildByFieldName("object")
		attr := left.ChildByFieldName("attribute")
		if obj == nil || attr == nil || f.Text(obj) != "self" {
			return true
		}
		a := Assignment{Target: f.Text(attr), Value: n.ChildByFieldName("right"), Node: n}
		if typ := n.ChildByFieldName("type"); typ != nil {
			a.Annotation = f.Text(typ)
		}
		out = append(out, a)
		return true
	})
	return out
}

// Assignment is a top-level assignment statement, annotated or not.
type Assignment struct {
	// Target is the assigned name; empty when the target is not a plain
	// identifier.
	Target string
	// Annotation is the declared type text ("TypeAlias", ...), empty when
	// the assignment is unannotated.
	Annotation string
	// Value is the right-hand side node, nil for bare annotations.
	Value *sitter.Node
	Node  *sitter.Node
}

// Import is a "from X import a, b" statement.
type Import struct {
	Module string
	Names  []string
	Node   *sitter.Node
}

// ModuleDocstring returns the file's module-level docstring, unquoted, or "".
func (f *File) ModuleDocstring() string {
	return docstringOf(f, f.root)
}

// Classes returns every class definition in the file, with decorators
// attached. Nested classes are not descended into.
func (f *File) Classes() []Class {
	var classes []Class
	Walk(f.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "class_definition":
			if cls := f.parseClass(n, nil); cls != nil {
				classes = append(classes, *cls)
			}
			return false
		case "decorated_definition":
			def := n.ChildByFieldName("definition")
			if def != nil && def.Type() == "class_definition" {
				if cls := f.parseClass(def, f.parseDecorators(n)); cls != nil {
					classes = append(classes, *cls)
				}
				return false
			}
		}
		return true
	})
	return classes
}

// TopLevelAssignments returns the module's direct assignment statements.
func (f *File) TopLevelAssignments() []Assignment {
	var out []Assignment
	for i := 0; i < int(f.root.ChildCount()); i++ {
		stmt := f.root.Child(i)
		if stmt.Type() != "expression_statement" {
			continue
		}
		for j := 0; j < int(stmt.ChildCount()); j++ {
			n := stmt.Child(j)
			if n.Type() != "assignment" {
				continue
			}
			a := Assignment{Node: n, Value: n.ChildByFieldName("right")}
			if left := n.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
				a.Target = f.Text(left)
			}
			if typ := n.ChildByFieldName("type"); typ != nil {
				a.Annotation = f.Text(typ)
			}
			if a.Target != "" {
				out = append(out, a)
			}
		}
	}
	return out
}

// FromImports returns the file's "from X import ..." statements.
func (f *File) FromImports() []Import {
	var imports []Import
	Walk(f.root, func(n *sitter.Node) bool {
		if n.Type() != "import_from_statement" {
			return n.Type() == "module"
		}
		imp := Import{Node: n}
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "dotted_name":
				if imp.Module == "" && i > 0 && n.Child(i-1).Type() == "from" {
					imp.Module = f.Text(child)
				} else {
					imp.Names = append(imp.Names, f.Text(child))
				}
			case "relative_import":
				if imp.Module == "" {
					imp.Module = f.Text(child)
				}
			case "aliased_import":
				if name := child.ChildByFieldName("name"); name != nil {
					imp.Names = append(imp.Names, f.Text(name))
				}
			case "wildcard_import":
				imp.Names = append(imp.Names, "*")
			}
		}
		if imp.Module != "" {
			imports = append(imports, imp)
		}
		return false
	})
	return imports
}

func (f *File) parseClass(n *sitter.Node, decorators []Decorator) *Class {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return nil
	}
	cls := &Class{
		Name:       f.Text(name),
		Decorators: decorators,
		Docstring:  docstringOf(f, body),
		Node:       n,
		file:       f,
		body:       body,
	}
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.ChildCount()); i++ {
			arg := supers.Child(i)
			switch arg.Type() {
			case "identifier", "attribute", "subscript":
				cls.Bases = append(cls.Bases, f.Text(arg))
			}
		}
	}
	return cls
}

// Methods returns the class's direct methods, sync and async, with
// decorators attached.
func (c Class) Methods() []Method {
	var methods []Method
	f := c.file
	for i := 0; i < int(c.body.ChildCount()); i++ {
		stmt := c.body.Child(i)
		switch stmt.Type() {
		case "function_definition":
			if m := f.parseMethod(stmt, nil); m != nil {
				methods = append(methods, *m)
			}
		case "decorated_definition":
			def := stmt.ChildByFieldName("definition")
			if def != nil && def.Type() == "function_definition" {
				if m := f.parseMethod(def, f.parseDecorators(stmt)); m != nil {
					methods = append(methods, *m)
				}
			}
		}
	}
	return methods
}

func (f *File) parseMethod(n *sitter.Node, decorators []Decorator) *Method {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return nil
	}
	m := &Method{
		Name:       f.Text(name),
		Decorators: decorators,
		Docstring:  docstringOf(f, body),
		Node:       n,
		file:       f,
		body:       body,
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "async" {
			m.Async = true
			break
		}
	}
	return m
}

func (f *File) parseDecorators(decorated *sitter.Node) []Decorator {
	var decorators []Decorator
	for i := 0; i < int(decorated.ChildCount()); i++ {
		child := decorated.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			expr := child.Child(j)
			switch expr.Type() {
			case "identifier", "attribute":
				decorators = append(decorators, Decorator{Name: f.Text(expr), Node: child})
			case "call":
				decorators = append(decorators, f.parseCallDecorator(expr, child))
			}
		}
	}
	return decorators
}

func (f *File) parseCallDecorator(call, node *sitter.Node) Decorator {
	dec := Decorator{Node: node}
	if fn := call.ChildByFieldName("function"); fn != nil {
		dec.Name = f.Text(fn)
	}
	dec.Args, dec.Kwargs = f.CallArguments(call)
	return dec
}

// CallArguments splits a call node's argument list into positional nodes and
// a keyword-name to value-node mapping.
func (f *File) CallArguments(call *sitter.Node) ([]*sitter.Node, map[string]*sitter.Node) {
	args := []*sitter.Node{}
	kwargs := map[string]*sitter.Node{}
	list := call.ChildByFieldName("arguments")
	if list == nil {
		return args, kwargs
	}
	for i := 0; i < int(list.ChildCount()); i++ {
		arg := list.Child(i)
		switch arg.Type() {
		case "(", ")", ",", "comment":
			continue
		case "keyword_argument":
			name := arg.ChildByFieldName("name")
			value := arg.ChildByFieldName("value")
			if name != nil && value != nil {
				kwargs[f.Text(name)] = value
			}
		default:
			args = append(args, arg)
		}
	}
	return args, kwargs
}

// docstringOf returns the unquoted docstring of a module or block node.
func docstringOf(f *File, container *sitter.Node) string {
	for i := 0; i < int(container.ChildCount()); i++ {
		stmt := container.Child(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" {
			return ""
		}
		for j := 0; j < int(stmt.ChildCount()); j++ {
			if n := stmt.Child(j); n.Type() == "string" || n.Type() == "concatenated_string" {
				return Unquote(f.Text(n))
			}
		}
		return ""
	}
	return ""
}
