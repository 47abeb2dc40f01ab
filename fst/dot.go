package fst

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteDot writes the FST in Graphviz dot format. Arcs are labeled
// "label/output"; arcs that complete an input are drawn bold.
func WriteDot[T any](f *FST[T], w io.Writer) error {
	bw := bufio.NewWriter(w)
	var start Arc[T]
	f.FirstArc(&start)

	fmt.Fprintln(bw, "digraph FST {")
	fmt.Fprintln(bw, "  rankdir = LR; splines=true; concentrate=false; ordering=out;")
	fmt.Fprintln(bw, "  initial [shape=point color=white label=\"\"];")
	writeDotNode(bw, start.target)
	fmt.Fprintf(bw, "  initial -> %s [label=\"\"%s];\n", dotNodeID(start.target), dotArcStyle(start.IsFinal()))

	seen := map[int64]bool{start.target: true}
	stack := []int64{start.target}
	in := f.BytesReader()
	var arc Arc[T]
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node <= 0 {
			continue
		}
		if _, err := f.ReadFirstRealTargetArc(node, &arc, in); err != nil {
			return err
		}
		for {
			if !seen[arc.target] {
				seen[arc.target] = true
				writeDotNode(bw, arc.target)
				stack = append(stack, arc.target)
			}
			label := f.dotLabel(arc.Label)
			if !f.outputs.IsNoOutput(arc.Output) {
				label += "/" + f.outputs.String(arc.Output)
			}
			if arc.IsFinal() && !f.outputs.IsNoOutput(arc.NextFinalOutput) {
				label += " [" + f.outputs.String(arc.NextFinalOutput) + "]"
			}
			fmt.Fprintf(bw, "  %s -> %s [label=%q%s];\n", dotNodeID(node), dotNodeID(arc.target), label, dotArcStyle(arc.IsFinal()))
			if arc.IsLast() {
				break
			}
			if _, err := f.ReadNextRealArc(&arc, in); err != nil {
				return err
			}
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// Finality belongs to arcs, not nodes: only the shared final end node is
// drawn as an accepting state.
func writeDotNode(w io.Writer, node int64) {
	shape := "circle"
	if node == finalEndNode {
		shape = "doublecircle"
	}
	fmt.Fprintf(w, "  %s [shape=%s label=\"\"];\n", dotNodeID(node), shape)
}

func dotArcStyle(final bool) string {
	if final {
		return " style=bold"
	}
	return ""
}

func dotNodeID(node int64) string {
	switch {
	case node == finalEndNode:
		return "final"
	case node == nonFinalEndNode:
		return "stop"
	default:
		return "n" + strconv.FormatInt(node, 10)
	}
}

func (f *FST[T]) dotLabel(label int) string {
	if f.inputType == InputByte1 && label >= 0x20 && label < 0x7f && label != '"' && label != '\\' {
		return string(rune(label))
	}
	return "0x" + strconv.FormatInt(int64(label), 16)
}
