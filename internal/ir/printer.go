package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Textual LLVM emission. Every node knows how to print itself; Print glues
// the module together.

func (r Reg) String() string { return string(r) }

func (c IntConst) String() string { return strconv.FormatInt(int64(c), 10) }

func (i *BinOp) String() string {
	return fmt.Sprintf("%s = %s %s %s, %s", i.Dst, i.Op, i.Type, i.X, i.Y)
}

func (i *Call) String() string {
	args := make([]string, len(i.Args))
	for j, a := range i.Args {
		args[j] = fmt.Sprintf("%s %s", a.Type, a.Val)
	}
	call := fmt.Sprintf("call %s @%s(%s)", i.Type, i.Fn, strings.Join(args, ", "))
	if i.Dst == "" {
		return call
	}
	return fmt.Sprintf("%s = %s", i.Dst, call)
}

func (i *Alloc) String() string {
	return fmt.Sprintf("%s = alloca %s", i.Addr, i.Type)
}

func (i *AllocArray) String() string {
	return fmt.Sprintf("%s = alloca %s, %s %s", i.Addr, i.Type, I64, i.Count)
}

func (i *Load) String() string {
	return fmt.Sprintf("%s = load %s, %s* %s", i.Dst, i.Type, i.Type, i.Addr)
}

func (i *Store) String() string {
	return fmt.Sprintf("store %s %s, %s* %s", i.Type, i.Val, i.Type, i.Addr)
}

func (i *GetElementPtr) String() string {
	parts := make([]string, len(i.Idx))
	for j, idx := range i.Idx {
		parts[j] = fmt.Sprintf("%s %s", idx.Type, idx.Val)
	}
	return fmt.Sprintf("%s = getelementptr %s, %s* %s, %s",
		i.Dst, i.Type, i.Type, i.Addr, strings.Join(parts, ", "))
}

func (i *Ret) String() string {
	return fmt.Sprintf("ret %s %s", i.Type, i.Val)
}

func (*RetVoid) String() string { return "ret " + Void }

func (i *Br) String() string {
	return fmt.Sprintf("br label %%%s", i.Label)
}

func (i *CondBr) String() string {
	return fmt.Sprintf("br i1 %s, label %%%s, label %%%s", i.Cond, i.True, i.False)
}

func (i *Phi) String() string {
	edges := make([]string, len(i.Edges))
	for j, e := range i.Edges {
		edges[j] = fmt.Sprintf("[%s, %%%s]", e.Val, e.Label)
	}
	return fmt.Sprintf("%s = phi %s %s", i.Dst, i.Type, strings.Join(edges, ", "))
}

// Assign only shows up in dumps of intermediate optimizer state.
func (i *Assign) String() string {
	return fmt.Sprintf("%s = %s", i.Dst, i.Src)
}

func (b *Block) String() string {
	preds := make([]string, len(b.Preds))
	for i, p := range b.Preds {
		preds[i] = p.Label
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s:  ; preds: %s", b.Label, strings.Join(preds, ", "))
	for _, ins := range b.Instrs {
		sb.WriteString("\n    ")
		sb.WriteString(ins.String())
	}
	return sb.String()
}

// Len is the character count of the emitted constant: escape pairs collapse
// to one byte and the terminating NUL is included.
func (s StrConst) Len() int {
	n := len(s.Raw) + 1
	n -= strings.Count(s.Raw, `\n`)
	n -= strings.Count(s.Raw, `\"`)
	return n
}

// Type is the LLVM array-of-char type of the constant.
func (s StrConst) Type() string {
	return fmt.Sprintf("[%d x %s]", s.Len(), I8)
}

func (s StrConst) String() string {
	body := strings.ReplaceAll(s.Raw, `\n`, `\0A`)
	body = strings.ReplaceAll(body, `\"`, `\22`)
	return `c"` + body + `\00"`
}

func (g *GlobalDef) String() string {
	return fmt.Sprintf("%s = private constant %s %s", g.Addr, g.Lit.Type(), g.Lit)
}

func (d *BuiltinDecl) String() string {
	return fmt.Sprintf("declare %s @%s(%s)", d.Type, d.Name, strings.Join(d.ArgTypes, ", "))
}

func (d *FuncDef) String() string {
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = fmt.Sprintf("%s %s", a.Type, a.Val)
	}
	blocks := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		blocks[i] = b.String()
	}
	return fmt.Sprintf("define %s @%s(%s) {\n%s\n}",
		d.Type, d.Name, strings.Join(args, ", "), strings.Join(blocks, "\n"))
}

// Print renders the whole module: pooled globals first, then declarations
// and definitions in program order.
func Print(p *Program) string {
	var parts []string
	for _, g := range p.Globals {
		parts = append(parts, g.String())
	}
	for _, f := range p.Funcs {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "\n")
}
