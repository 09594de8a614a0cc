package models

import (
	"encoding/json"
	"sort"
)

// CapabilitySet is the set of skills a worker has.
type CapabilitySet map[string]struct{}

// NewCapabilitySet builds a set from tags, ignoring empty ones.
func NewCapabilitySet(tags ...string) CapabilitySet {
	set := make(CapabilitySet, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		set[tag] = struct{}{}
	}
	return set
}

// Has reports whether tag is in the set.
func (c CapabilitySet) Has(tag string) bool {
	_, ok := c[tag]
	return ok
}

// Slice returns the tags in sorted order.
func (c CapabilitySet) Slice() []string {
	tags := make([]string, 0, len(c))
	for tag := range c {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Clone returns an independent copy of the set.
func (c CapabilitySet) Clone() CapabilitySet {
	out := make(CapabilitySet, len(c))
	for tag := range c {
		out[tag] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (c CapabilitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Slice())
}

// UnmarshalJSON decodes an array of tags.
func (c *CapabilitySet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*c = NewCapabilitySet(tags...)
	return nil
}
