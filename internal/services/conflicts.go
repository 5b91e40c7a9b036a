package services

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"fleet-dispatch-service/internal/domain"
)

// ConflictGraph is the incompatibility graph over the families present in
// one order. Iteration order is always by family id.
type ConflictGraph struct {
	families []domain.FamilyID
	adj      map[domain.FamilyID]map[domain.FamilyID]struct{}
}

// NewConflictGraph keeps only edges whose both endpoints are in families.
// Self-restrictions are ignored: a family can always share a group with itself.
func NewConflictGraph(families []domain.FamilyID, restrictions []domain.RestrictionEdge) *ConflictGraph {
	present := uniqueFamilies(families)
	g := &ConflictGraph{
		families: present,
		adj:      make(map[domain.FamilyID]map[domain.FamilyID]struct{}, len(present)),
	}
	for _, f := range present {
		g.adj[f] = map[domain.FamilyID]struct{}{}
	}

	for _, r := range restrictions {
		if r.A == r.B {
			continue
		}
		na, okA := g.adj[r.A]
		nb, okB := g.adj[r.B]
		if !okA || !okB {
			continue
		}
		na[r.B] = struct{}{}
		nb[r.A] = struct{}{}
	}

	return g
}

// Families returns the vertices sorted by id.
func (g *ConflictGraph) Families() []domain.FamilyID { return slices.Clone(g.families) }

func (g *ConflictGraph) Degree(f domain.FamilyID) int { return len(g.adj[f]) }

func (g *ConflictGraph) HasEdge(a, b domain.FamilyID) bool {
	_, ok := g.adj[a][b]
	return ok
}

// EdgeCount returns the number of undirected edges.
func (g *ConflictGraph) EdgeCount() int {
	total := 0
	for _, n := range g.adj {
		total += len(n)
	}
	return total / 2
}

// Neighbors returns f's neighbours sorted by id.
func (g *ConflictGraph) Neighbors(f domain.FamilyID) []domain.FamilyID {
	out := make([]domain.FamilyID, 0, len(g.adj[f]))
	for n := range g.adj[f] {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// GreedyColoring assigns every family a group index.
//
// Families are visited by descending degree, ties by descending id, and each
// goes into the first existing group holding none of its neighbours, or a new
// group. The result is deterministic for a given graph.
func (g *ConflictGraph) GreedyColoring() (map[domain.FamilyID]int, int) {
	order := slices.Clone(g.families)
	slices.SortFunc(order, func(a, b domain.FamilyID) int {
		if c := cmp.Compare(g.Degree(b), g.Degree(a)); c != 0 {
			return c
		}
		return cmp.Compare(b, a)
	})

	assignment := make(map[domain.FamilyID]int, len(order))
	var groups [][]domain.FamilyID

	for _, f := range order {
		placed := false
		for idx, members := range groups {
			if !slices.ContainsFunc(members, func(m domain.FamilyID) bool { return g.HasEdge(f, m) }) {
				groups[idx] = append(members, f)
				assignment[f] = idx
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []domain.FamilyID{f})
			assignment[f] = len(groups) - 1
		}
	}

	return assignment, len(groups)
}

// FamilyGroup is one conflict-free partition of an order's items.
type FamilyGroup struct {
	Index         int
	Title         string
	FamilyIDs     []domain.FamilyID
	FamilyNames   []string
	TotalQuantity int
	Items         []domain.LineItem
}

// ConflictResolution describes how an order's items must be grouped.
type ConflictResolution struct {
	NeedsSplit  bool
	GroupCount  int
	Groups      []FamilyGroup
	Conflicts   []string
	Summary     string
	Assignments map[domain.FamilyID]int
}

// ResolveFamilyConflicts partitions items into the fewest groups the greedy
// coloring finds such that no group mixes restricted families.
//
// With fewer than two families, or no restriction between the families that
// are present, the order stays whole: one implicit group, NeedsSplit false.
// Items without a family carry no restriction and join the first group.
func ResolveFamilyConflicts(items []domain.LineItem, restrictions []domain.RestrictionEdge) ConflictResolution {
	families := make([]domain.FamilyID, 0, len(items))
	names := map[domain.FamilyID]string{}
	for _, it := range items {
		if it.FamilyID == 0 {
			continue
		}
		families = append(families, it.FamilyID)
		if it.FamilyName != "" {
			names[it.FamilyID] = it.FamilyName
		}
	}

	graph := NewConflictGraph(families, restrictions)
	if len(graph.families) < 2 || graph.EdgeCount() == 0 {
		return singleGroup(items, graph.families, names)
	}

	assignment, total := graph.GreedyColoring()

	groups := make([]FamilyGroup, total)
	for idx := range groups {
		groups[idx] = FamilyGroup{Index: idx, Title: groupTitle(idx), Items: []domain.LineItem{}}
	}
	for _, f := range graph.families {
		idx := assignment[f]
		groups[idx].FamilyIDs = append(groups[idx].FamilyIDs, f)
	}
	for _, it := range items {
		idx := 0
		if it.FamilyID != 0 {
			idx = assignment[it.FamilyID]
		}
		groups[idx].Items = append(groups[idx].Items, it)
		groups[idx].TotalQuantity += it.Quantity
	}
	for idx := range groups {
		groups[idx].FamilyNames = familyNames(groups[idx].FamilyIDs, names)
	}

	conflicts := conflictLabels(graph, restrictions, names)

	return ConflictResolution{
		NeedsSplit: true,
		GroupCount: total,
		Groups:     groups,
		Conflicts:  conflicts,
		Summary: fmt.Sprintf(
			"Order items were split into %d groups to avoid conflicts between: %s.",
			total, strings.Join(conflicts, ", "),
		),
		Assignments: assignment,
	}
}

func singleGroup(items []domain.LineItem, families []domain.FamilyID, names map[domain.FamilyID]string) ConflictResolution {
	group := FamilyGroup{
		Index:       0,
		Title:       groupTitle(0),
		FamilyIDs:   slices.Clone(families),
		FamilyNames: familyNames(families, names),
		Items:       slices.Clone(items),
	}
	if group.Items == nil {
		group.Items = []domain.LineItem{}
	}

	assignment := make(map[domain.FamilyID]int, len(families))
	for _, f := range families {
		assignment[f] = 0
	}
	for _, it := range items {
		group.TotalQuantity += it.Quantity
	}

	return ConflictResolution{
		NeedsSplit:  false,
		GroupCount:  1,
		Groups:      []FamilyGroup{group},
		Conflicts:   []string{},
		Assignments: assignment,
	}
}

// conflictLabels names every restricted pair present in the graph once, sorted.
// A pair stored in both directions is labelled by the first occurrence.
func conflictLabels(g *ConflictGraph, restrictions []domain.RestrictionEdge, names map[domain.FamilyID]string) []string {
	seen := map[[2]domain.FamilyID]struct{}{}
	labels := []string{}
	for _, r := range restrictions {
		if r.A == r.B || !g.HasEdge(r.A, r.B) {
			continue
		}
		pair := [2]domain.FamilyID{min(r.A, r.B), max(r.A, r.B)}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}

		if r.AName == "" {
			r.AName = names[r.A]
		}
		if r.BName == "" {
			r.BName = names[r.B]
		}
		labels = append(labels, r.Label())
	}
	slices.Sort(labels)
	return labels
}

func familyNames(ids []domain.FamilyID, names map[domain.FamilyID]string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := names[id]; ok {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

func groupTitle(idx int) string {
	return fmt.Sprintf("Group %d", idx+1)
}

func uniqueFamilies(families []domain.FamilyID) []domain.FamilyID {
	out := make([]domain.FamilyID, 0, len(families))
	for _, f := range families {
		if f == 0 {
			continue
		}
		out = append(out, f)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
