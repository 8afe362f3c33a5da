package conftree

import (
	"fmt"

	"dario.cat/mergo"
)

// Merge layers override on top of base and returns the result as a new
// section. Values from override win for matching keys; nested sections merge
// recursively. Neither input is modified.
func Merge(base, override *Section) (*Section, error) {
	dst := base.Map()
	src := override.Map()

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMergeFailed, err)
	}
	return New(dst), nil
}

// MergeAll layers each section in order on top of the first, later sections
// overriding earlier ones. An empty input yields an empty section.
func MergeAll(sections ...*Section) (*Section, error) {
	merged := New(nil)
	for _, section := range sections {
		if section == nil {
			continue
		}
		next, err := Merge(merged, section)
		if err != nil {
			return nil, err
		}
		merged = next
	}
	return merged, nil
}
