package pysrc

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser parses Python source into tree-sitter syntax trees. A Parser is
// not safe for concurrent use; the scan is a single sequential pass.
type Parser struct {
	inner *sitter.Parser
}

// NewParser returns a Parser configured with the Python grammar.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{inner: p}
}

// File is one parsed Python source file.
type File struct {
	Path    string
	Content []byte

	tree *sitter.Tree
	root *sitter.Node
}

// ParseFile reads and parses a Python source file from disk.
func (p *Parser) ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.Parse(path, content)
}

// Parse parses Python source from bytes.
func (p *Parser) Parse(path string, content []byte) (*File, error) {
	tree, err := p.inner.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("failed to parse %s: no root node", path)
	}
	if root.HasError() {
		return nil, fmt.Errorf("syntax error in %s", path)
	}
	return &File{Path: path, Content: content, tree: tree, root: root}, nil
}

// Close releases the parser's tree-sitter resources.
func (p *Parser) Close() {
	if p.inner != nil {
		p.inner.Close()
	}
}

// Root returns the module node.
func (f *File) Root() *sitter.Node {
	return f.root
}

// Text returns the source text covered by a node, exactly as written. This
// is the "unparse" used for type annotations.
func (f *File) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(f.Content)
}

// Close releases the parse tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
	}
}

// Walk visits every node under n in depth-first order. Returning false from
// fn stops recursion into that node's children.
func Walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		Walk(n.Child(i), fn)
	}
}
