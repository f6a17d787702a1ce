// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/poiesic/aquakb/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalItemRecord serializes an ItemRecord to bytes.
func MarshalItemRecord(record *core.ItemRecord) []byte {
	buf := make([]byte, core.ItemRecordMUS.Size(*record))
	core.ItemRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalItemRecord deserializes an ItemRecord from bytes.
func UnmarshalItemRecord(data []byte) (*core.ItemRecord, error) {
	record, _, err := core.ItemRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalStageRecord serializes a StageRecord to bytes.
func MarshalStageRecord(record *core.StageRecord) []byte {
	buf := make([]byte, core.StageRecordMUS.Size(*record))
	core.StageRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalStageRecord deserializes a StageRecord from bytes.
func UnmarshalStageRecord(data []byte) (*core.StageRecord, error) {
	record, _, err := core.StageRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}
