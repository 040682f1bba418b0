package ir

import (
	"fmt"
	"math"
)

// The SSA rewrite replaces scalar stack traffic with register values:
// per-block live slots get phis, stores become placeholder assignments,
// loads collapse into names, and the placeholders are then substituted away
// together with trivial phis and constant arithmetic. Memory operations
// marked noopt (array slots) are left untouched.

// Optimize rewrites every defined function in place. Builtin declarations
// have no blocks and are skipped.
func Optimize(p *Program) {
	for _, f := range p.Funcs {
		if fd, ok := f.(*FuncDef); ok {
			optimizeFunc(fd)
		}
	}
}

type liveSlot struct {
	addr Reg
	typ  string
}

// liveSlots returns the slots read before written within b, in first-load
// order. These are exactly the slots whose value at block entry depends on
// the predecessor taken.
func liveSlots(b *Block) []liveSlot {
	dead := make(map[Reg]bool)
	seen := make(map[Reg]bool)
	var live []liveSlot
	for _, ins := range b.Instrs {
		switch s := ins.(type) {
		case *Load:
			if !s.NoOpt && !dead[s.Addr] && !seen[s.Addr] {
				seen[s.Addr] = true
				live = append(live, liveSlot{addr: s.Addr, typ: s.Type})
			}
		case *Store:
			if !s.NoOpt {
				dead[s.Addr] = true
			}
		}
	}
	return live
}

func optimizeFunc(f *FuncDef) {
	label2block := make(map[string]*Block, len(f.Blocks))
	for _, b := range f.Blocks {
		label2block[b.Label] = b
	}

	// Versioned SSA names per slot: %loc2 -> %loc2.1, %loc2.2, ...
	versions := make(map[Reg]int)
	freshName := func(slot Reg) Reg {
		versions[slot]++
		return Reg(fmt.Sprintf("%s.%d", slot, versions[slot]))
	}

	// Phi insertion: each live-in slot gets a placeholder phi whose value
	// and incoming edges all carry the slot's own name for now.
	for _, b := range f.Blocks {
		if len(b.Preds) == 0 {
			continue
		}
		slots := liveSlots(b)
		phis := make([]Instr, len(slots))
		for i, lv := range slots {
			edges := make([]PhiEdge, len(b.Preds))
			for j, p := range b.Preds {
				edges[j] = PhiEdge{Val: lv.addr, Label: p.Label}
			}
			phis[i] = &Phi{Dst: lv.addr, Type: lv.typ, Edges: edges, Slot: lv.addr}
		}
		b.Instrs = append(phis, b.Instrs...)
	}

	// Renaming: thread the current name of each slot through the block.
	// phiMap keeps the end-of-block binding for the fixup pass.
	phiMap := make(map[*Block]map[Reg]Reg, len(f.Blocks))
	for _, b := range f.Blocks {
		pm := make(map[Reg]Reg)
		phiMap[b] = pm
		instrs := b.Instrs[:0]
		for _, ins := range b.Instrs {
			switch s := ins.(type) {
			case *Store:
				if s.NoOpt {
					instrs = append(instrs, s)
					break
				}
				name := freshName(s.Addr)
				pm[s.Addr] = name
				instrs = append(instrs, &Assign{Dst: name, Src: s.Val})
			case *Load:
				if s.NoOpt {
					instrs = append(instrs, s)
					break
				}
				instrs = append(instrs, &Assign{Dst: s.Dst, Src: pm[s.Addr]})
			case *Phi:
				if s.Slot == "" {
					instrs = append(instrs, s)
					break
				}
				name := freshName(s.Slot)
				pm[s.Slot] = name
				instrs = append(instrs, &Phi{Dst: name, Type: s.Type, Edges: s.Edges, Slot: s.Slot})
			case *Alloc:
				if s.NoOpt {
					instrs = append(instrs, s)
				}
			default:
				instrs = append(instrs, ins)
			}
		}
		b.Instrs = instrs
	}

	// Phi fixup: resolve each placeholder edge to the predecessor's binding,
	// synthesizing missing bindings on demand. Recording the new name before
	// recursing keeps CFG cycles finite.
	extra := make(map[*Block][]Instr)
	var resolve func(b *Block, typ string, slot Reg) Reg
	resolve = func(b *Block, typ string, slot Reg) Reg {
		if name, ok := phiMap[b][slot]; ok {
			return name
		}
		name := freshName(slot)
		phiMap[b][slot] = name
		edges := make([]PhiEdge, len(b.Preds))
		for i, p := range b.Preds {
			edges[i] = PhiEdge{Val: resolve(p, typ, slot), Label: p.Label}
		}
		if len(edges) == 1 {
			extra[b] = append(extra[b], &Assign{Dst: name, Src: edges[0].Val})
		} else {
			extra[b] = append(extra[b], &Phi{Dst: name, Type: typ, Edges: edges, Slot: slot})
		}
		return name
	}

	for _, b := range f.Blocks {
		instrs := b.Instrs[:0]
		for _, ins := range b.Instrs {
			phi, ok := ins.(*Phi)
			if !ok || phi.Slot == "" {
				instrs = append(instrs, ins)
				continue
			}
			for i, e := range phi.Edges {
				if slot, isReg := e.Val.(Reg); isReg && slot == phi.Slot {
					phi.Edges[i].Val = resolve(label2block[e.Label], phi.Type, slot)
				}
			}
			if len(phi.Edges) == 1 {
				instrs = append(instrs, &Assign{Dst: phi.Dst, Src: phi.Edges[0].Val})
			} else {
				instrs = append(instrs, phi)
			}
		}
		b.Instrs = instrs
	}

	for _, b := range f.Blocks {
		if len(extra[b]) > 0 {
			b.Instrs = append(append([]Instr{}, extra[b]...), b.Instrs...)
		}
	}

	rounds := 0
	for eliminateAssignments(f) {
		rounds++
	}
	for foldConstants(f) {
		rounds++
	}
	log.Debugf("optimized %s in %d rewrite rounds", f.Name, rounds)
}

// substitute rewrites every operand of every instruction through resolve.
func substitute(f *FuncDef, resolve func(Value) Value) {
	for _, b := range f.Blocks {
		for _, ins := range b.Instrs {
			switch s := ins.(type) {
			case *BinOp:
				s.X = resolve(s.X)
				s.Y = resolve(s.Y)
			case *Call:
				for i := range s.Args {
					s.Args[i].Val = resolve(s.Args[i].Val)
				}
			case *Store:
				s.Val = resolve(s.Val)
			case *AllocArray:
				s.Count = resolve(s.Count)
			case *GetElementPtr:
				for i := range s.Idx {
					s.Idx[i].Val = resolve(s.Idx[i].Val)
				}
			case *Ret:
				s.Val = resolve(s.Val)
			case *CondBr:
				s.Cond = resolve(s.Cond)
			case *Phi:
				for i := range s.Edges {
					s.Edges[i].Val = resolve(s.Edges[i].Val)
				}
			}
		}
	}
}

// chase follows a value through an assignment map to its ultimate source.
// A revisited name ends the walk: mutually-trivial phis can leave two names
// assigned to each other, and either one is a sound result.
func chase(m map[Reg]Value, v Value) Value {
	visited := make(map[Reg]bool)
	for {
		r, ok := v.(Reg)
		if !ok {
			return v
		}
		next, ok := m[r]
		if !ok || visited[r] {
			return v
		}
		visited[r] = true
		v = next
	}
}

// eliminateAssignments substitutes placeholder assignments through all
// operands and drops them, then demotes phis made trivial by the
// substitution back to assignments. Returns whether another round is needed.
func eliminateAssignments(f *FuncDef) bool {
	assigns := make(map[Reg]Value)
	for _, b := range f.Blocks {
		for _, ins := range b.Instrs {
			if a, ok := ins.(*Assign); ok {
				assigns[a.Dst] = a.Src
			}
		}
	}
	if len(assigns) == 0 {
		return false
	}

	substitute(f, func(v Value) Value { return chase(assigns, v) })

	for _, b := range f.Blocks {
		instrs := b.Instrs[:0]
		for _, ins := range b.Instrs {
			switch s := ins.(type) {
			case *Assign:
				// dropped
			case *Phi:
				if v, trivial := trivialPhiValue(s); trivial {
					instrs = append(instrs, &Assign{Dst: s.Dst, Src: v})
				} else {
					instrs = append(instrs, s)
				}
			default:
				instrs = append(instrs, ins)
			}
		}
		b.Instrs = instrs
	}
	return true
}

// trivialPhiValue reports the single value a phi merges, ignoring edges that
// feed the phi its own result.
func trivialPhiValue(p *Phi) (Value, bool) {
	var v Value
	for _, e := range p.Edges {
		if r, ok := e.Val.(Reg); ok && r == p.Dst {
			continue
		}
		if v == nil {
			v = e.Val
			continue
		}
		if e.Val != v {
			return nil, false
		}
	}
	if v == nil {
		return nil, false
	}
	return v, true
}

// foldConstants evaluates binops whose operands are both integer literals
// and substitutes the results, repeating from the caller until a fixed
// point. Division by zero is never folded.
func foldConstants(f *FuncDef) bool {
	folded := make(map[Reg]Value)
	for _, b := range f.Blocks {
		for _, ins := range b.Instrs {
			bin, ok := ins.(*BinOp)
			if !ok {
				continue
			}
			x, okx := bin.X.(IntConst)
			y, oky := bin.Y.(IntConst)
			if !okx || !oky {
				continue
			}
			if v, ok := evalBinOp(bin.Op, int64(x), int64(y)); ok {
				folded[bin.Dst] = IntConst(v)
			}
		}
	}
	if len(folded) == 0 {
		return false
	}

	substitute(f, func(v Value) Value { return chase(folded, v) })

	for _, b := range f.Blocks {
		instrs := b.Instrs[:0]
		for _, ins := range b.Instrs {
			if bin, ok := ins.(*BinOp); ok {
				if _, dropped := folded[bin.Dst]; dropped {
					continue
				}
			}
			instrs = append(instrs, ins)
		}
		b.Instrs = instrs
	}
	return true
}

// evalBinOp mirrors the runtime semantics of the emitted instructions:
// sdiv truncates toward zero and srem takes the dividend's sign.
func evalBinOp(op string, x, y int64) (int64, bool) {
	switch op {
	case OpAdd:
		return x + y, true
	case OpSub:
		return x - y, true
	case OpMul:
		return x * y, true
	case OpDiv:
		if y == 0 || (x == math.MinInt64 && y == -1) {
			return 0, false
		}
		return x / y, true
	case OpRem:
		if y == 0 || (x == math.MinInt64 && y == -1) {
			return 0, false
		}
		return x % y, true
	case OpEq:
		return b2i(x == y), true
	case OpNe:
		return b2i(x != y), true
	case OpLt:
		return b2i(x < y), true
	case OpLe:
		return b2i(x <= y), true
	case OpGt:
		return b2i(x > y), true
	case OpGe:
		return b2i(x >= y), true
	}
	return 0, false
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
