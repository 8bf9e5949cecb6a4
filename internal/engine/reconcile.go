package engine

import (
	"slices"

	"github.com/theirongolddev/yeargoals/internal/model"
)

// A Refresh can land while a mutation waits on the remote, replacing the
// list the optimistic step edited. Commit and rollback therefore reconcile
// by ID: each entity ends up present at most once, whichever reply lands last.

func goalKey(g model.Goal) string       { return g.ID }
func monthKey(m model.Month) string     { return m.ID }
func taskKey(t model.Task) string       { return t.ID }
func subGoalKey(s model.SubGoal) string { return s.ID }

// settle places v, the server's copy of a created entity, into items. An
// entry already carrying v's ID is replaced and the temporary one dropped;
// otherwise the temporary entry is replaced. When neither is present v is
// inserted, at the head when atHead is set.
func settle[T any](items []T, key func(T) string, tempID string, v T, atHead bool) []T {
	id := key(v)
	if i := slices.IndexFunc(items, func(x T) bool { return key(x) == id }); i >= 0 {
		items[i] = v
		if tempID != id {
			items = slices.DeleteFunc(items, func(x T) bool { return key(x) == tempID })
		}
		return items
	}
	if i := slices.IndexFunc(items, func(x T) bool { return key(x) == tempID }); i >= 0 {
		items[i] = v
		return items
	}
	if atHead {
		return slices.Insert(items, 0, v)
	}
	return append(items, v)
}

// restore puts a removed entity back at index unless one with its ID is
// already present.
func restore[T any](items []T, key func(T) string, index int, v T) []T {
	id := key(v)
	if slices.ContainsFunc(items, func(x T) bool { return key(x) == id }) {
		return items
	}
	return slices.Insert(items, min(index, len(items)), v)
}

// drop removes every entity with the given ID.
func drop[T any](items []T, key func(T) string, id string) []T {
	return slices.DeleteFunc(items, func(x T) bool { return key(x) == id })
}
