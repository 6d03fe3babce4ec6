// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package dataset

// IndexMap is a bijection between raw identifiers and dense zero-based
// indices, scoped to one domain and one entity kind (user or item).
// Indices are assigned in first-occurrence order over the source table,
// which keeps retrain runs on identical input byte-for-byte comparable.
type IndexMap struct {
	toIndex map[int64]int
	toID    []int64
}

// NewIndexMap returns an empty index map.
func NewIndexMap() *IndexMap {
	return &IndexMap{toIndex: make(map[int64]int)}
}

// Add registers id if unseen and returns its dense index.
func (m *IndexMap) Add(id int64) int {
	if idx, ok := m.toIndex[id]; ok {
		return idx
	}
	idx := len(m.toID)
	m.toIndex[id] = idx
	m.toID = append(m.toID, id)
	return idx
}

// Index returns the dense index for id.
func (m *IndexMap) Index(id int64) (int, bool) {
	idx, ok := m.toIndex[id]
	return idx, ok
}

// ID returns the raw identifier at idx.
func (m *IndexMap) ID(idx int) (int64, bool) {
	if idx < 0 || idx >= len(m.toID) {
		return 0, false
	}
	return m.toID[idx], true
}

// Len returns the number of mapped identifiers.
func (m *IndexMap) Len() int {
	return len(m.toID)
}

// IDs returns the raw identifiers in index order. The returned slice is
// shared; callers must not mutate it.
func (m *IndexMap) IDs() []int64 {
	return m.toID
}

// BuildUserIndex maps every distinct user in ratings to a dense index,
// first occurrence first. An empty table yields an empty map.
func BuildUserIndex(ratings []Rating) *IndexMap {
	m := NewIndexMap()
	for _, r := range ratings {
		m.Add(r.UserID)
	}
	return m
}

// BuildItemIndex maps every distinct item in ratings to a dense index,
// first occurrence first. An empty table yields an empty map.
func BuildItemIndex(ratings []Rating) *IndexMap {
	m := NewIndexMap()
	for _, r := range ratings {
		m.Add(r.ItemID)
	}
	return m
}
