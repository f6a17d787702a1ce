package badger

import (
	"fmt"

	"github.com/poiesic/aquakb/core"
)

// Key prefixes for different data types
const (
	itemRecordPrefix  = "itmrec"
	itemPathPrefix    = "itmpath"
	stageRecordPrefix = "stgrec"
	checkpointPrefix  = "chkpt"
)

// makeItemRecordKey generates a key for an item record by ID.
func makeItemRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", itemRecordPrefix, id))
}

// makeItemPathKey generates a key for the path index.
// Format: prefix:path — lexicographic iteration yields path order.
func makeItemPathKey(path string) []byte {
	return []byte(itemPathPrefix + ":" + path)
}

// makeStageRecordKey generates a key for a (stage, item) status record.
// Format: prefix:stage:id — all records for a stage share a prefix.
func makeStageRecordKey(stage core.Stage, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", stageRecordPrefix, stage, id))
}

// makeStagePrefix generates the iteration prefix for one stage's records.
func makeStagePrefix(stage core.Stage) []byte {
	return []byte(fmt.Sprintf("%s:%s:", stageRecordPrefix, stage))
}

// makeCheckpointKey generates a key for per-stage pipeline checkpoints.
func makeCheckpointKey(stage core.Stage) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, stage))
}
