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


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted record types. The schema
// is small and stable, so the serializers are maintained directly instead
// of being generated.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// timeMUS serializes timestamps as Unix microseconds.
type timeMUS struct{}

var timeMicroMUS = timeMUS{}

func (timeMUS) Marshal(t time.Time, bs []byte) int {
	return varint.Uint64.Marshal(uint64(t.UnixMicro()), bs)
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(int64(v)).UTC(), n, nil
}

func (timeMUS) Size(t time.Time) int {
	return varint.Uint64.Size(uint64(t.UnixMicro()))
}

// stringSliceMUS serializes []string as a length-prefixed sequence.
type stringSliceMUS struct{}

var stringsMUS = stringSliceMUS{}

func (stringSliceMUS) Marshal(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func (stringSliceMUS) Unmarshal(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrNegativeLength
	}
	for i := 0; i < length; i++ {
		var (
			s  string
			n1 int
		)
		s, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v = append(v, s)
	}
	return v, n, nil
}

func (stringSliceMUS) Size(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

// idSliceMUS serializes []ID as a length-prefixed sequence.
type idSliceMUS struct{}

var idsMUS = idSliceMUS{}

func (idSliceMUS) Marshal(v []ID, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, id := range v {
		n += IDMUS.Marshal(id, bs[n:])
	}
	return n
}

func (idSliceMUS) Unmarshal(bs []byte) (v []ID, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrNegativeLength
	}
	for i := 0; i < length; i++ {
		var (
			id ID
			n1 int
		)
		id, n1, err = IDMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v = append(v, id)
	}
	return v, n, nil
}

func (idSliceMUS) Size(v []ID) (size int) {
	size = varint.Int.Size(len(v))
	for _, id := range v {
		size += IDMUS.Size(id)
	}
	return size
}

// vectorMUS serializes []float32 with fixed-width elements.
type vectorMUS struct{}

var float32sMUS = vectorMUS{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrNegativeLength
	}
	if length > 0 {
		v = make([]float32, 0, length)
	}
	for i := 0; i < length; i++ {
		var (
			f  float32
			n1 int
		)
		f, n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		v = append(v, f)
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

// ItemMUS serializes Item values.
var ItemMUS = itemMUS{}

type itemMUS struct{}

func (itemMUS) Marshal(v Item, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Path, bs[n:])
	n += varint.Int.Marshal(int(v.Source), bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Fingerprint, bs[n:])
	n += timeMicroMUS.Marshal(v.LastModified, bs[n:])
	n += ord.String.Marshal(v.Contents, bs[n:])
	return n
}

func (itemMUS) Unmarshal(bs []byte) (v Item, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.Path, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	var source int
	source, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Source = SourceType(source)
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Fingerprint, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.LastModified, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Contents, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (itemMUS) Size(v Item) int {
	return IDMUS.Size(v.Id) +
		ord.String.Size(v.Path) +
		varint.Int.Size(int(v.Source)) +
		ord.String.Size(v.Title) +
		ord.String.Size(v.Fingerprint) +
		timeMicroMUS.Size(v.LastModified) +
		ord.String.Size(v.Contents)
}

// AnalysisMUS serializes Analysis values.
var AnalysisMUS = analysisMUS{}

type analysisMUS struct{}

func (analysisMUS) Marshal(v Analysis, bs []byte) (n int) {
	n = ord.String.Marshal(v.Purpose, bs)
	n += stringsMUS.Marshal(v.Questions, bs[n:])
	n += stringsMUS.Marshal(v.KeyConcepts, bs[n:])
	n += stringsMUS.Marshal(v.Packages, bs[n:])
	return n
}

func (analysisMUS) Unmarshal(bs []byte) (v Analysis, n int, err error) {
	var n1 int
	v.Purpose, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.Questions, n1, err = stringsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.KeyConcepts, n1, err = stringsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Packages, n1, err = stringsMUS.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (analysisMUS) Size(v Analysis) int {
	return ord.String.Size(v.Purpose) +
		stringsMUS.Size(v.Questions) +
		stringsMUS.Size(v.KeyConcepts) +
		stringsMUS.Size(v.Packages)
}

// ItemRecordMUS serializes ItemRecord values.
var ItemRecordMUS = itemRecordMUS{}

type itemRecordMUS struct{}

func (itemRecordMUS) Marshal(v ItemRecord, bs []byte) (n int) {
	n = ItemMUS.Marshal(v.Item, bs)
	n += ord.Bool.Marshal(v.Analysis != nil, bs[n:])
	if v.Analysis != nil {
		n += AnalysisMUS.Marshal(*v.Analysis, bs[n:])
	}
	n += ord.String.Marshal(v.EmbeddingText, bs[n:])
	n += float32sMUS.Marshal(v.Vector, bs[n:])
	n += timeMicroMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMicroMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (itemRecordMUS) Unmarshal(bs []byte) (v ItemRecord, n int, err error) {
	var n1 int
	v.Item, n, err = ItemMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var hasAnalysis bool
	hasAnalysis, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	if hasAnalysis {
		var analysis Analysis
		analysis, n1, err = AnalysisMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return v, n, err
		}
		v.Analysis = &analysis
	}
	v.EmbeddingText, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Vector, n1, err = float32sMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.InsertedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (itemRecordMUS) Size(v ItemRecord) int {
	size := ItemMUS.Size(v.Item) + ord.Bool.Size(v.Analysis != nil)
	if v.Analysis != nil {
		size += AnalysisMUS.Size(*v.Analysis)
	}
	return size +
		ord.String.Size(v.EmbeddingText) +
		float32sMUS.Size(v.Vector) +
		timeMicroMUS.Size(v.InsertedAt) +
		timeMicroMUS.Size(v.UpdatedAt)
}

// StageRecordMUS serializes StageRecord values.
var StageRecordMUS = stageRecordMUS{}

type stageRecordMUS struct{}

func (stageRecordMUS) Marshal(v StageRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.ItemId, bs)
	n += ord.String.Marshal(string(v.Stage), bs[n:])
	n += varint.Int.Marshal(int(v.Status), bs[n:])
	n += ord.String.Marshal(v.Fingerprint, bs[n:])
	n += ord.String.Marshal(v.Error, bs[n:])
	n += timeMicroMUS.Marshal(v.CompletedAt, bs[n:])
	n += timeMicroMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (stageRecordMUS) Unmarshal(bs []byte) (v StageRecord, n int, err error) {
	var n1 int
	v.ItemId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var stage string
	stage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Stage = Stage(stage)
	var status int
	status, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Status = Status(status)
	v.Fingerprint, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Error, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.CompletedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (stageRecordMUS) Size(v StageRecord) int {
	return IDMUS.Size(v.ItemId) +
		ord.String.Size(string(v.Stage)) +
		varint.Int.Size(int(v.Status)) +
		ord.String.Size(v.Fingerprint) +
		ord.String.Size(v.Error) +
		timeMicroMUS.Size(v.CompletedAt) +
		timeMicroMUS.Size(v.UpdatedAt)
}

// CheckpointMUS serializes Checkpoint values.
var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

func (checkpointMUS) Marshal(v Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(string(v.Stage), bs)
	n += ord.String.Marshal(v.RunId, bs[n:])
	n += idsMUS.Marshal(v.CompletedItems, bs[n:])
	n += varint.Int.Marshal(v.LastFlushedIndex, bs[n:])
	n += varint.Int.Marshal(v.TotalItems, bs[n:])
	n += timeMicroMUS.Marshal(v.StartedAt, bs[n:])
	n += timeMicroMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (checkpointMUS) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	var n1 int
	var stage string
	stage, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	v.Stage = Stage(stage)
	v.RunId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.CompletedItems, n1, err = idsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.LastFlushedIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.TotalItems, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.StartedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.UpdatedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (checkpointMUS) Size(v Checkpoint) int {
	return ord.String.Size(string(v.Stage)) +
		ord.String.Size(v.RunId) +
		idsMUS.Size(v.CompletedItems) +
		varint.Int.Size(v.LastFlushedIndex) +
		varint.Int.Size(v.TotalItems) +
		timeMicroMUS.Size(v.StartedAt) +
		timeMicroMUS.Size(v.UpdatedAt)
}
