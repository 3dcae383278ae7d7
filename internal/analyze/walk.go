package analyze

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// MaxDepth bounds tree traversal. Nodes nested deeper than this (only seen
// in generated code) are not visited.
const MaxDepth = 10000

type frame struct {
	node  *sitter.Node
	depth int
}

// Walk visits root and every descendant in pre-order using an explicit
// stack, so pathological nesting cannot exhaust the goroutine stack.
func Walk(root *sitter.Node, visit func(n *sitter.Node)) {
	if root == nil {
		return
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visit(f.node)

		if f.depth >= MaxDepth {
			continue
		}
		// Push in reverse so the first child is visited next.
		for i := int(f.node.ChildCount()) - 1; i >= 0; i-- {
			if child := f.node.Child(i); child != nil {
				stack = append(stack, frame{node: child, depth: f.depth + 1})
			}
		}
	}
}
