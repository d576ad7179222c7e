package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer pretty-prints a Node tree, one line per node, indented by depth.
// It is used by diagnostic tooling and by tests that assert on tree shape
// without hand-building the expected structure.
type Printer struct {
	Output  io.Writer
	NodeFmt string // defaults to "%v"
}

func (p *Printer) Print(n Node) error {
	pp := &printer{w: p.Output, nodeFmt: p.NodeFmt}
	if pp.nodeFmt == "" {
		pp.nodeFmt = "%v"
	}
	Walk(pp, n)
	return pp.err
}

type printer struct {
	w       io.Writer
	nodeFmt string
	depth   int
	err     error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}
	p.depth++
	format := "%s" + p.nodeFmt + "\n"
	_, p.err = fmt.Fprintf(p.w, format, strings.Repeat(". ", p.depth-1), n)
	return p
}
