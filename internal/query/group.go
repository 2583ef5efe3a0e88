package query

import (
	"net/url"
	"sort"

	"github.com/spetr/todoquery/pkg/types"
)

// SortByCount selects ordering group summaries by group size instead
// of group identity.
const SortByCount = "count"

// GroupSpec describes one grouped view: which field partitions the
// collection, which field each member carries, and how the resulting
// summaries are ordered. The two grouped views differ only in the
// (Key, Complement) pair.
type GroupSpec struct {
	Key        string // grouping field
	Complement string // field recorded per member
	ByCount    bool   // order groups by count rather than group value
	Descending bool
}

// OwnerGrouping builds the spec for the group-by-owner view from its
// request parameters.
func OwnerGrouping(params url.Values) GroupSpec {
	return newGrouping(FieldOwner, FieldCategory, params)
}

// CategoryGrouping builds the spec for the group-by-category view.
func CategoryGrouping(params url.Values) GroupSpec {
	return newGrouping(FieldCategory, FieldOwner, params)
}

// newGrouping resolves sortBy and sortOrder. sortBy defaults to group
// identity; a value naming the grouping field itself also means group
// identity; "count" orders by group size. Anything else falls back to
// group identity rather than failing; unlike status, the sort field
// was never a validated enum in this API.
func newGrouping(key, complement string, params url.Values) GroupSpec {
	return GroupSpec{
		Key:        key,
		Complement: complement,
		ByCount:    params.Get("sortBy") == SortByCount,
		Descending: params.Get("sortOrder") == "desc",
	}
}

// GroupTodos partitions todos by the spec's grouping field and shapes
// the summaries: one group per distinct value, count equal to the
// number of members, members ordered by id. Groups are ordered by the
// resolved sort field in the resolved direction, ties broken by group
// value in that same direction so output is deterministic.
func GroupTodos(todos []types.Todo, spec GroupSpec) []types.TodoGroup {
	byValue := make(map[string][]types.GroupMember)
	var order []string

	for _, t := range todos {
		value := groupKey(t, spec.Key)
		if _, ok := byValue[value]; !ok {
			order = append(order, value)
		}
		byValue[value] = append(byValue[value], types.GroupMember{
			ID:    t.ID,
			Value: groupKey(t, spec.Complement),
		})
	}

	groups := make([]types.TodoGroup, 0, len(order))
	for _, value := range order {
		members := byValue[value]
		sort.Slice(members, func(a, b int) bool {
			return members[a].ID.Hex() < members[b].ID.Hex()
		})
		groups = append(groups, types.TodoGroup{
			Value:   value,
			Count:   len(members),
			Members: members,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return lessGroup(groups[i], groups[j], spec)
	})

	return groups
}

func groupKey(t types.Todo, field string) string {
	if field == FieldOwner {
		return t.Owner
	}
	return t.Category
}

func lessGroup(a, b types.TodoGroup, spec GroupSpec) bool {
	if spec.ByCount && a.Count != b.Count {
		if spec.Descending {
			return a.Count > b.Count
		}
		return a.Count < b.Count
	}
	if spec.Descending {
		return a.Value > b.Value
	}
	return a.Value < b.Value
}
