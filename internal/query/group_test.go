package query

import (
	"net/url"
	"testing"

	"github.com/spetr/todoquery/pkg/types"
)

// groupFixture has owners {Chris, Chris, Pat, Jamie, Sam}; ids are
// chosen so encounter order differs from id order.
func groupFixture(t *testing.T) []types.Todo {
	t.Helper()
	return []types.Todo{
		{ID: oid(t, "dddddddddddddddddddddddd"), Owner: "Chris", Category: "homework"},
		{ID: oid(t, "aaaaaaaaaaaaaaaaaaaaaaaa"), Owner: "Chris", Category: "groceries"},
		{ID: oid(t, "bbbbbbbbbbbbbbbbbbbbbbbb"), Owner: "Pat", Category: "homework"},
		{ID: oid(t, "cccccccccccccccccccccccc"), Owner: "Jamie", Category: "video games"},
		{ID: oid(t, "eeeeeeeeeeeeeeeeeeeeeeee"), Owner: "Sam", Category: "groceries"},
	}
}

func TestGroupTodosByOwner(t *testing.T) {
	todos := groupFixture(t)

	t.Run("AscendingByOwner", func(t *testing.T) {
		groups := GroupTodos(todos, OwnerGrouping(url.Values{}))

		wantOrder := []string{"Chris", "Jamie", "Pat", "Sam"}
		if len(groups) != len(wantOrder) {
			t.Fatalf("got %d groups, want %d", len(groups), len(wantOrder))
		}
		for i, want := range wantOrder {
			if groups[i].Value != want {
				t.Errorf("group %d = %s, want %s", i, groups[i].Value, want)
			}
		}

		wantCounts := map[string]int{"Chris": 2, "Jamie": 1, "Pat": 1, "Sam": 1}
		for _, g := range groups {
			if g.Count != wantCounts[g.Value] {
				t.Errorf("count for %s = %d, want %d", g.Value, g.Count, wantCounts[g.Value])
			}
			if g.Count != len(g.Members) {
				t.Errorf("count for %s = %d but %d members", g.Value, g.Count, len(g.Members))
			}
		}
	})

	t.Run("MembersOrderedByID", func(t *testing.T) {
		groups := GroupTodos(todos, OwnerGrouping(url.Values{}))
		chris := groups[0]
		if chris.Members[0].ID.Hex() != "aaaaaaaaaaaaaaaaaaaaaaaa" ||
			chris.Members[1].ID.Hex() != "dddddddddddddddddddddddd" {
			t.Errorf("members not in id order: %s, %s",
				chris.Members[0].ID.Hex(), chris.Members[1].ID.Hex())
		}
	})

	t.Run("MembersCarryComplement", func(t *testing.T) {
		groups := GroupTodos(todos, OwnerGrouping(url.Values{}))
		chris := groups[0]
		if chris.Members[0].Value != "groceries" || chris.Members[1].Value != "homework" {
			t.Errorf("member categories = %s, %s; want groceries, homework",
				chris.Members[0].Value, chris.Members[1].Value)
		}
	})

	t.Run("Descending", func(t *testing.T) {
		groups := GroupTodos(todos, OwnerGrouping(url.Values{"sortOrder": {"desc"}}))
		wantOrder := []string{"Sam", "Pat", "Jamie", "Chris"}
		for i, want := range wantOrder {
			if groups[i].Value != want {
				t.Errorf("group %d = %s, want %s", i, groups[i].Value, want)
			}
		}
	})

	t.Run("ByCountAscending", func(t *testing.T) {
		groups := GroupTodos(todos, OwnerGrouping(url.Values{"sortBy": {"count"}}))
		if last := groups[len(groups)-1]; last.Value != "Chris" {
			t.Errorf("largest group should sort last, got %s", last.Value)
		}
		singles := map[string]bool{}
		for _, g := range groups[:3] {
			if g.Count != 1 {
				t.Errorf("group %s has count %d, want 1", g.Value, g.Count)
			}
			singles[g.Value] = true
		}
		for _, owner := range []string{"Jamie", "Pat", "Sam"} {
			if !singles[owner] {
				t.Errorf("singleton owner %s missing from first three groups", owner)
			}
		}
	})

	t.Run("ByCountDescending", func(t *testing.T) {
		groups := GroupTodos(todos, OwnerGrouping(url.Values{"sortBy": {"count"}, "sortOrder": {"desc"}}))
		if groups[0].Value != "Chris" {
			t.Errorf("largest group should sort first, got %s", groups[0].Value)
		}
	})

	t.Run("SumOfCountsEqualsTotal", func(t *testing.T) {
		groups := GroupTodos(todos, OwnerGrouping(url.Values{}))
		total := 0
		for _, g := range groups {
			total += g.Count
		}
		if total != len(todos) {
			t.Errorf("sum of counts = %d, want %d", total, len(todos))
		}
	})
}

func TestGroupTodosByCategory(t *testing.T) {
	todos := groupFixture(t)
	groups := GroupTodos(todos, CategoryGrouping(url.Values{}))

	wantOrder := []string{"groceries", "homework", "video games"}
	if len(groups) != len(wantOrder) {
		t.Fatalf("got %d groups, want %d", len(groups), len(wantOrder))
	}
	for i, want := range wantOrder {
		if groups[i].Value != want {
			t.Errorf("group %d = %s, want %s", i, groups[i].Value, want)
		}
	}

	groceries := groups[0]
	if groceries.Count != 2 {
		t.Fatalf("groceries count = %d, want 2", groceries.Count)
	}
	// Complementary field for category grouping is the owner.
	if groceries.Members[0].Value != "Chris" || groceries.Members[1].Value != "Sam" {
		t.Errorf("member owners = %s, %s; want Chris, Sam",
			groceries.Members[0].Value, groceries.Members[1].Value)
	}
}

func TestGroupingSpecs(t *testing.T) {
	tests := []struct {
		name     string
		params   url.Values
		build    func(url.Values) GroupSpec
		wantSpec GroupSpec
	}{
		{
			"OwnerDefaults", url.Values{}, OwnerGrouping,
			GroupSpec{Key: FieldOwner, Complement: FieldCategory},
		},
		{
			// Naming the grouping field itself means group identity.
			"OwnerSortByOwner", url.Values{"sortBy": {"owner"}}, OwnerGrouping,
			GroupSpec{Key: FieldOwner, Complement: FieldCategory},
		},
		{
			"OwnerSortByCount", url.Values{"sortBy": {"count"}}, OwnerGrouping,
			GroupSpec{Key: FieldOwner, Complement: FieldCategory, ByCount: true},
		},
		{
			// Unrecognized sort fields fall back to group identity.
			"OwnerSortByUnknown", url.Values{"sortBy": {"priority"}}, OwnerGrouping,
			GroupSpec{Key: FieldOwner, Complement: FieldCategory},
		},
		{
			"CategoryDesc", url.Values{"sortOrder": {"desc"}}, CategoryGrouping,
			GroupSpec{Key: FieldCategory, Complement: FieldOwner, Descending: true},
		},
		{
			// Only the literal "desc" descends.
			"CategoryUppercaseDesc", url.Values{"sortOrder": {"DESC"}}, CategoryGrouping,
			GroupSpec{Key: FieldCategory, Complement: FieldOwner},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build(tt.params); got != tt.wantSpec {
				t.Errorf("spec = %+v, want %+v", got, tt.wantSpec)
			}
		})
	}
}

func TestGroupTodosEmpty(t *testing.T) {
	groups := GroupTodos(nil, OwnerGrouping(url.Values{}))
	if len(groups) != 0 {
		t.Errorf("empty collection should yield no groups, got %d", len(groups))
	}
}
