// Package pages groups the catalog along its browse dimensions and decides,
// per group, whether the static snapshot can embed the group whole or the
// runtime loader needs on-demand page files.
//
// Grouping is a pure projection: a work with N tags appears in N tag groups,
// and groups overlap freely. The planner never mutates the works' owned
// arrays.
package pages

import (
	"sort"

	"github.com/taibuivan/nijidex/internal/catalog"
	"github.com/taibuivan/nijidex/pkg/pagination"
)

// Dimension is one grouping axis of the catalog.
type Dimension string

const (
	ByTag    Dimension = "tags"
	ByCast   Dimension = "cv"
	ByCircle Dimension = "circles"
)

// Dimensions is the fixed output order of the grouping axes.
var Dimensions = [...]Dimension{ByTag, ByCast, ByCircle}

// Group is a named bucket of works sharing one dimension value, held in
// canonical catalog order (release date descending, nulls last, id
// descending).
type Group struct {
	Dimension Dimension
	Name      string
	Works     []*catalog.Work
}

// Size returns the number of works in the group.
func (g *Group) Size() int { return len(g.Works) }

// Inline reports whether the group is small enough to be embedded whole in
// the static snapshot, in which case no page files are produced for it.
func (g *Group) Inline(policy pagination.Policy) bool {
	return len(g.Works) <= policy.InlineThreshold
}

// PageCount returns the number of page files the group needs: zero for
// inline-eligible groups, ceil(size/pageSize) otherwise.
func (g *Group) PageCount(policy pagination.Policy) int {
	if g.Inline(policy) {
		return 0
	}
	return policy.PageCount(len(g.Works))
}

// Page returns the works of the 1-indexed page. Page 1 duplicates the head
// of the group the snapshot already embeds, so the loader can fetch any page
// without knowing what was inlined.
func (g *Group) Page(page int, policy pagination.Policy) []*catalog.Work {
	start, end := policy.Bounds(page, len(g.Works))
	return g.Works[start:end]
}

// Plan is the grouped catalog with its paging policy.
type Plan struct {
	Policy pagination.Policy
	// Groups holds every non-empty group in deterministic order: dimension
	// in Dimensions order, then group name ascending.
	Groups []*Group
}

// BuildPlan groups works along every dimension.
//
// Works are first put into canonical order once; each group inherits that
// order, so concatenating a group's pages reproduces its full sorted list
// exactly. Empty group names (a work without a circle) produce no group.
func BuildPlan(works []*catalog.Work, policy pagination.Policy) *Plan {
	ordered := make([]*catalog.Work, len(works))
	copy(ordered, works)
	sort.SliceStable(ordered, func(i, j int) bool { return catalog.Newer(ordered[i], ordered[j]) })

	plan := &Plan{Policy: policy}
	for _, dim := range Dimensions {
		plan.Groups = append(plan.Groups, buildDimension(dim, ordered)...)
	}
	return plan
}

// Overflow returns the groups that need page files, in plan order.
func (p *Plan) Overflow() []*Group {
	overflow := make([]*Group, 0)
	for _, g := range p.Groups {
		if !g.Inline(p.Policy) {
			overflow = append(overflow, g)
		}
	}
	return overflow
}

// Group returns the named group of a dimension, or nil when absent.
func (p *Plan) Group(dim Dimension, name string) *Group {
	for _, g := range p.Groups {
		if g.Dimension == dim && g.Name == name {
			return g
		}
	}
	return nil
}

func buildDimension(dim Dimension, ordered []*catalog.Work) []*Group {
	buckets := make(map[string][]*catalog.Work)

	for _, w := range ordered {
		for _, name := range groupKeys(dim, w) {
			buckets[name] = append(buckets[name], w)
		}
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]*Group, 0, len(names))
	for _, name := range names {
		groups = append(groups, &Group{Dimension: dim, Name: name, Works: buckets[name]})
	}
	return groups
}

// groupKeys returns the dimension values a work belongs to. Blank values
// are skipped so no empty-named group is ever emitted.
func groupKeys(dim Dimension, w *catalog.Work) []string {
	switch dim {
	case ByTag:
		return w.Tags
	case ByCast:
		return w.Cast
	case ByCircle:
		if w.CircleName == "" {
			return nil
		}
		return []string{w.CircleName}
	}
	return nil
}
