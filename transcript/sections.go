package transcript

import "github.com/powerdrillai/powerdrill-flow-sub000/types"

// Mode selects the default status for sections without a task block.
// While a stream is open the optimistic default is running; for fully
// materialized history no further updates will arrive, so the default is
// done.
type Mode int

const (
	// Streaming marks a reduction over an open stream.
	Streaming Mode = iota
	// Materialized marks a reduction over fully persisted history.
	Materialized
)

// defaultGroupKey is the partition key component for blocks without
// grouping metadata.
const defaultGroupKey = "default"

// sectionKey builds the partition key. The NUL separator keeps
// ("a","") and ("","a") from colliding.
func sectionKey(groupID, groupName string) string {
	if groupID == "" {
		groupID = defaultGroupKey
	}
	if groupName == "" {
		groupName = defaultGroupKey
	}
	return groupID + "\x00" + groupName
}

// Reduce partitions blocks into sections keyed by (group id, group name),
// preserving first-seen key order. Section status is derived from the last
// task block in the partition, falling back to the mode's default; section
// stage is the latest non-empty stage seen. Partitions containing a
// SOURCES block are excluded entirely: citation metadata is consumed by a
// separate affordance and never rendered in the answer stream.
//
// Reduce is deterministic: reducing the same block list twice yields
// sections in the same order.
func Reduce(blocks []types.Block, mode Mode) []types.Section {
	defaultStatus := types.StatusRunning
	if mode == Materialized {
		defaultStatus = types.StatusDone
	}

	var order []string
	sections := make(map[string]*types.Section)
	hasSources := make(map[string]bool)

	for _, b := range blocks {
		key := sectionKey(b.GroupID, b.GroupName)
		sec, ok := sections[key]
		if !ok {
			sec = &types.Section{
				GroupID:   b.GroupID,
				GroupName: b.GroupName,
				Status:    defaultStatus,
			}
			sections[key] = sec
			order = append(order, key)
		}

		if b.Kind == types.BlockSources {
			hasSources[key] = true
		}
		if b.Stage != "" {
			sec.Stage = b.Stage
		}
		if b.Kind == types.BlockTask && b.Task != nil && b.Task.Status != "" {
			sec.Status = b.Task.Status
		}
		sec.Blocks = append(sec.Blocks, b)
	}

	out := make([]types.Section, 0, len(order))
	for _, key := range order {
		if hasSources[key] {
			continue
		}
		out = append(out, *sections[key])
	}
	return out
}
