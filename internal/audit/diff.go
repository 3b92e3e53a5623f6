package audit

import "reflect"

// updatedAtKey is the update-timestamp column excluded from change sets; it
// moves on every save and carries no audit value.
const updatedAtKey = "updated_at"

// Changes returns the attributes whose values differ between the two
// snapshots, keyed by column name with the post-update value. The update
// timestamp is always discarded. Returns nil when nothing else changed.
func Changes(old, updated map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newValue := range updated {
		if key == updatedAtKey {
			continue
		}
		oldValue, ok := old[key]
		if ok && reflect.DeepEqual(oldValue, newValue) {
			continue
		}
		changes[key] = newValue
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}
