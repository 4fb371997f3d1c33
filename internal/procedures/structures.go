package procedures

import (
	"slices"
	"strconv"

	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/viz"
)

// HeapParams configures a heap input. Max selects a max-heap.
type HeapParams struct {
	SortParams `mapstructure:",squash"`
	Max        bool `mapstructure:"max"`
}

// heapOrder reports whether a child value belongs above its parent.
type heapOrder func(child, parent int) bool

func (hp HeapParams) order() heapOrder {
	if hp.Max {
		return func(c, p int) bool { return c > p }
	}
	return func(c, p int) bool { return c < p }
}

// defineHeap registers a heap procedure over bars. Bars already in the
// heap are shown as sorted; pending bars stay unsorted.
func defineHeap(spec Spec, run func(t *barsTracer, above heapOrder)) *Spec {
	spec.Family = FamilyStructures
	spec.Counters = []string{CounterComparisons, CounterSwaps}
	return define[viz.Bars](spec, func(p Params) (viz.Bars, engine.Procedure[viz.Bars], error) {
		var hp HeapParams
		if err := decode(p, &hp); err != nil {
			return viz.Bars{}, nil, err
		}
		bars, err := hp.bars()
		if err != nil {
			return viz.Bars{}, nil, err
		}
		above := hp.order()
		return bars, engine.Func(spec.ID, func(t *barsTracer) { run(t, above) }), nil
	})
}

var (
	heapInsertSource = []string{
		"insert(heap, v):",
		"  heap.append(v)",
		"  i = len(heap) - 1",
		"  while i > 0:",
		"    p = (i - 1) / 2",
		"    if heap[i] does not beat heap[p]: break",
		"    swap(heap[i], heap[p])",
		"    i = p",
	}
	heapBuildSource = []string{
		"buildHeap(a):",
		"  for i in n/2-1 down to 0:",
		"    siftDown(a, n, i)",
		"",
		"siftDown(a, n, i):",
		"  top = i",
		"  l, r = 2i+1, 2i+2",
		"  if l < n and a[l] beats a[top]: top = l",
		"  if r < n and a[r] beats a[top]: top = r",
		"  if top != i:",
		"    swap(a[i], a[top])",
		"    siftDown(a, n, top)",
	}
	bstSearchSource = []string{
		"search(root, x):",
		"  cur = root",
		"  while cur != nil:",
		"    compare x with cur.value",
		"    if x == cur.value: return cur",
		"    if x < cur.value: cur = cur.left",
		"    else: cur = cur.right",
		"  return not found",
	}
)

func init() {
	defineHeap(Spec{
		ID:          "heap-insert",
		Name:        "Heap Insert",
		Description: "Inserts values one at a time, sifting each up past weaker parents.",
		Complexity:  "O(n log n)",
		Source:      heapInsertSource,
	}, heapInsert)
	defineHeap(Spec{
		ID:          "heap-build",
		Name:        "Heap Build",
		Description: "Turns an array into a heap bottom-up by sifting every parent down.",
		Complexity:  "O(n)",
		Source:      heapBuildSource,
	}, heapBuild)
	defineBST(Spec{
		ID:          "bst-search",
		Name:        "BST Search",
		Description: "Walks a binary search tree from the root, going left or right after each comparison.",
		Complexity:  "O(h)",
		Source:      bstSearchSource,
	})
}

func heapInsert(t *barsTracer, above heapOrder) {
	a := t.State().Values()
	for n := range a {
		mark(t, viz.BarSorted, n)
		if !t.Step(2) {
			return
		}
		for i := n; i > 0; {
			p := (i - 1) / 2
			if !compare(t, 6, i, p) {
				return
			}
			mark(t, viz.BarSorted, i, p)
			if !above(a[i], a[p]) {
				break
			}
			if !exchange(t, a, 7, i, p) {
				return
			}
			mark(t, viz.BarSorted, i, p)
			i = p
		}
	}
	finish(t)
}

func heapBuild(t *barsTracer, above heapOrder) {
	a := t.State().Values()
	n := len(a)
	for i := n/2 - 1; i >= 0; i-- {
		if !t.Record(2) || !siftDown(t, a, n, i, above) {
			return
		}
	}
	finish(t)
}

func siftDown(t *barsTracer, a []int, n, i int, above heapOrder) bool {
	for {
		top := i
		for _, child := range [2]struct{ idx, line int }{{2*i + 1, 8}, {2*i + 2, 9}} {
			if child.idx >= n {
				continue
			}
			if !compare(t, child.line, child.idx, top) {
				return false
			}
			mark(t, viz.BarUnsorted, child.idx, top)
			if above(a[child.idx], a[top]) {
				top = child.idx
			}
		}
		if top == i {
			return true
		}
		if !exchange(t, a, 11, i, top) {
			return false
		}
		mark(t, viz.BarUnsorted, i, top)
		i = top
	}
}

// DefaultTreeSize is the number of values in a generated search tree.
const DefaultTreeSize = 7

// BSTParams configures a search tree. Values are inserted in order and
// duplicates dropped. Target defaults to the last value inserted.
type BSTParams struct {
	SortParams `mapstructure:",squash"`
	Target     *int `mapstructure:"target"`
}

type bstNode struct {
	value       int
	left, right string
}

// searchTree is a binary search tree laid out as a graph: x follows the
// in-order rank and y the depth. Node.Distance holds the depth.
type searchTree struct {
	root  string
	nodes map[string]bstNode
}

func buildSearchTree(values []int) (searchTree, viz.Graph) {
	st := searchTree{nodes: make(map[string]bstNode, len(values))}
	depth := map[string]int{}
	var g viz.Graph
	for _, v := range values {
		id := "n" + strconv.Itoa(len(st.nodes))
		if st.root == "" {
			st.root = id
			st.nodes[id] = bstNode{value: v}
			continue
		}
		cur, d := st.root, 0
		for {
			n := st.nodes[cur]
			if v == n.value {
				break
			}
			child := &n.right
			if v < n.value {
				child = &n.left
			}
			d++
			if *child == "" {
				*child = id
				st.nodes[cur] = n
				st.nodes[id] = bstNode{value: v}
				depth[id] = d
				g.Edges = append(g.Edges, viz.Edge{
					ID:     "e" + strconv.Itoa(len(g.Edges)+1),
					Source: cur,
					Target: id,
					State:  viz.EdgeUnvisited,
				})
				break
			}
			cur = *child
		}
	}

	rank := 0
	var walk func(id, parent string)
	walk = func(id, parent string) {
		if id == "" {
			return
		}
		n := st.nodes[id]
		walk(n.left, id)
		g.Nodes = append(g.Nodes, viz.Node{
			ID:       id,
			Label:    strconv.Itoa(n.value),
			X:        float64(60 + rank*70),
			Y:        float64(50 + depth[id]*90),
			State:    viz.NodeUnvisited,
			Distance: depth[id],
			Parent:   parent,
		})
		rank++
		walk(n.right, id)
	}
	walk(st.root, "")
	return st, g
}

func treeInput(p Params) (searchTree, viz.Graph, int, error) {
	var bp BSTParams
	if err := decode(p, &bp); err != nil {
		return searchTree{}, viz.Graph{}, 0, err
	}
	if len(bp.Values) == 0 && bp.Size == 0 {
		bp.Size = DefaultTreeSize
	}
	bars, err := bp.bars()
	if err != nil {
		return searchTree{}, viz.Graph{}, 0, err
	}
	values := bars.Values()
	target := values[len(values)-1]
	if bp.Target != nil {
		target = *bp.Target
	}
	st, g := buildSearchTree(values)
	return st, g, target, nil
}

func defineBST(spec Spec) *Spec {
	spec.Family = FamilyStructures
	spec.Counters = []string{CounterComparisons, CounterNodesVisited, CounterPathLength}
	return define[viz.Graph](spec, func(p Params) (viz.Graph, engine.Procedure[viz.Graph], error) {
		st, g, target, err := treeInput(p)
		if err != nil {
			return viz.Graph{}, nil, err
		}
		return g, engine.Func(spec.ID, func(t *graphTracer) { bstSearch(t, st, target) }), nil
	})
}

// bstSearch compares target with one node per step. A hit leaves the
// root-to-node path marked; a miss leaves the walked nodes visited.
func bstSearch(t *graphTracer, st searchTree, target int) {
	if !t.Record(2) {
		return
	}
	var path []string
	for cur := st.root; cur != ""; {
		n := st.nodes[cur]
		path = append(path, cur)
		id := cur
		t.Mutate(func(g *viz.Graph) {
			g.SetNodeState(id, viz.NodeVisiting)
			g.VisitedOrder = append(g.VisitedOrder, id)
		})
		t.Incr(CounterComparisons)
		t.Incr(CounterNodesVisited)
		if !t.Step(4) {
			return
		}
		if n.value == target {
			found := slices.Clone(path)
			t.Mutate(func(g *viz.Graph) {
				for i, p := range found {
					g.SetNodeState(p, viz.NodePath)
					if i > 0 {
						g.SetEdgeState(found[i-1], p, viz.EdgePath)
					}
				}
				g.PathNodes = found
			})
			t.SetCounter(CounterPathLength, len(found)-1)
			if !t.Record(5) {
				return
			}
			t.Record(engine.NoLine)
			return
		}

		next, line := n.right, 7
		if target < n.value {
			next, line = n.left, 6
		}
		t.Mutate(func(g *viz.Graph) {
			g.SetNodeState(id, viz.NodeVisited)
			if next != "" {
				g.SetEdgeState(id, next, viz.EdgeVisited)
			}
		})
		t.SetLine(line)
		cur = next
	}
	if t.Record(8) {
		t.Record(engine.NoLine)
	}
}
