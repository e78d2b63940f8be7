package graph

// DeleteOrder is the child-first table ordering derived from a sort
// result, plus advisory metadata for self-referencing tables.
type DeleteOrder struct {
	Tables []TableNode

	// NeedsRowOrdering lists self-referencing tables whose rows must be
	// deleted children-first within the table itself, or with the
	// constraint deferred. This does not affect the table ordering, only
	// how the caller should treat rows inside those tables.
	NeedsRowOrdering []TableNode
}

// ForInsert returns the dependencies-first ordering: for every non-cyclic
// dependency, the parent table appears before the child.
func (r *Result) ForInsert() []TableNode {
	return r.InsertOrder
}

// ForDelete returns the dependents-first ordering, the exact reverse of
// the insert order. When flagSelfReferencing is set, tables with a
// foreign key to themselves are additionally listed as needing
// single-table row ordering.
func (r *Result) ForDelete(flagSelfReferencing bool) DeleteOrder {
	out := DeleteOrder{Tables: make([]TableNode, len(r.InsertOrder))}
	for i, t := range r.InsertOrder {
		out.Tables[len(r.InsertOrder)-1-i] = t
	}

	if flagSelfReferencing && len(r.SelfReferencing) > 0 {
		out.NeedsRowOrdering = append([]TableNode(nil), r.SelfReferencing...)
	}

	return out
}
