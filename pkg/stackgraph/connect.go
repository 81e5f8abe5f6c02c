package stackgraph

// connect derives the typed connections between stacks from the underlying
// commit adjacency, fills in ParentStacks/ChildStacks, and computes the root
// and leaf sets.
//
// Only the newest commit of a stack can lead anywhere: every other commit's
// sole child lives in the same stack by construction. A connection is
// classified merge when the child commit is a merge, branch when the source
// tip fans out into multiple stacks, and linear otherwise. For a given
// ordered (from, to) pair the first connection seen wins; a merge touching
// the same target through several child commits never produces duplicates.
func (b *builder) connect() {
	type pair struct{ from, to StackID }
	seen := make(map[pair]bool)

	for _, sid := range b.graph.order {
		s := b.graph.Stacks[sid]
		tip := s.Tip()
		tipNode, _ := b.commits.Node(tip)
		fanOut := len(tipNode.Children) >= 2

		for _, childID := range tipNode.Children {
			target := b.graph.stackOf[childID]
			if target == sid {
				continue
			}
			if seen[pair{sid, target}] {
				continue
			}
			seen[pair{sid, target}] = true

			childNode, _ := b.commits.Node(childID)
			ctype := ConnectionLinear
			switch {
			case childNode.Commit.IsMerge():
				ctype = ConnectionMerge
			case fanOut:
				ctype = ConnectionBranch
			}

			b.graph.Connections = append(b.graph.Connections, Connection{
				From: sid,
				To:   target,
				Type: ctype,
			})
			s.ChildStacks = appendUnique(s.ChildStacks, target)
			t := b.graph.Stacks[target]
			t.ParentStacks = appendUnique(t.ParentStacks, sid)
		}
	}

	for _, sid := range b.graph.order {
		s := b.graph.Stacks[sid]
		if len(s.ParentStacks) == 0 {
			b.graph.RootStacks = append(b.graph.RootStacks, sid)
		}
		if len(s.ChildStacks) == 0 {
			b.graph.LeafStacks = append(b.graph.LeafStacks, sid)
		}
	}
}
