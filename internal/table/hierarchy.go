package table

// Node is one table in a hierarchy tree. Children are the tables whose
// primary key is a foreign key to this table's identifier.
type Node struct {
	Schema   Schema
	Children []*Node
}

// BuildForest partitions tables into one tree per root table.
//
// Tables that cannot be reached from any root (dangling or cyclic primary
// key references) are returned as orphans, in input order. A table claimed
// by one parent is never attached to a second one.
func BuildForest(tables []Schema) (forest []*Node, orphans []Schema) {
	claimed := make([]bool, len(tables))

	// referenced table identifier -> indices of tables whose primary key references it
	candidates := make(map[string][]int)
	for i, t := range tables {
		if t.IsRoot() {
			continue
		}
		pk, _ := t.PrimaryKey()
		seen := make(map[string]bool, len(pk.ForeignKeys))
		for _, fk := range pk.ForeignKeys {
			if seen[fk.Table] {
				continue
			}
			seen[fk.Table] = true
			candidates[fk.Table] = append(candidates[fk.Table], i)
		}
	}

	var grow func(n *Node)
	grow = func(n *Node) {
		// claim every direct child before descending so that siblings win
		// over deeper nodes, as a level-by-level extraction would
		var children []int
		for _, i := range candidates[n.Schema.Table] {
			if claimed[i] {
				continue
			}
			claimed[i] = true
			children = append(children, i)
		}
		for _, i := range children {
			child := &Node{Schema: tables[i]}
			grow(child)
			n.Children = append(n.Children, child)
		}
	}

	for i, t := range tables {
		if t.IsRoot() {
			claimed[i] = true
			forest = append(forest, &Node{Schema: t})
		}
	}
	for _, root := range forest {
		grow(root)
	}

	for i, t := range tables {
		if !claimed[i] {
			orphans = append(orphans, t)
		}
	}
	return forest, orphans
}

// OuterLeaves collapses the subtree below n to its deepest tables.
//
// A child that has descendants contributes its own outer leaves and is itself
// dropped; a child without descendants is a leaf. Intermediate tables of a
// chain therefore never appear in the result. ok is false when n has no
// children.
func (n *Node) OuterLeaves() (leaves []Schema, ok bool) {
	if len(n.Children) == 0 {
		return nil, false
	}
	var terminal []Schema
	for _, child := range n.Children {
		if deeper, ok := child.OuterLeaves(); ok {
			leaves = append(leaves, deeper...)
			continue
		}
		terminal = append(terminal, child.Schema)
	}
	return append(leaves, terminal...), true
}

// Flatten turns the tree rooted at n into a Definition.
func (n *Node) Flatten() Definition {
	if leaves, ok := n.OuterLeaves(); ok {
		return Family(n.Schema, leaves)
	}
	return Single(n.Schema)
}
