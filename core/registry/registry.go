// Package registry stores the decision variables of every asset, keyed by
// category, asset name and interval.
package registry

import (
	"errors"
	"fmt"

	"github.com/kilianp07/energylp/core/lp"
)

var (
	// ErrSealed is returned when appending to a sealed registry.
	ErrSealed = errors.New("registry: sealed")
	// ErrIntervalOrder is returned when a set skips an interval.
	ErrIntervalOrder = errors.New("registry: interval out of order")
	// ErrUnknownCategory is returned for a set with an unregistered tag.
	ErrUnknownCategory = errors.New("registry: unknown category")
	// ErrNotFound is returned by typed accessors when no set matches.
	ErrNotFound = errors.New("registry: not found")
)

// DuplicateRegistrationError reports a second set for the same category,
// asset and interval.
type DuplicateRegistrationError struct {
	Category Category
	Asset    string
	Interval int
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("registry: %s %q already registered for interval %d", e.Category, e.Asset, e.Interval)
}

// Registry owns every variable set of a formulation pass. It is built by one
// goroutine and read-only after Seal, after which concurrent reads are safe.
type Registry struct {
	sets   map[Category]map[string][]VariableSet
	order  map[Category][]string
	sealed bool
}

// New returns an empty Registry.
func New() *Registry {
	r := &Registry{
		sets:  make(map[Category]map[string][]VariableSet, len(categories)),
		order: make(map[Category][]string, len(categories)),
	}
	for _, c := range categories {
		r.sets[c] = make(map[string][]VariableSet)
	}
	return r
}

// Append registers variable sets. Each (category, asset) sequence must grow
// one interval at a time starting at zero.
func (r *Registry) Append(sets ...VariableSet) error {
	for _, s := range sets {
		if err := r.append(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) append(s VariableSet) error {
	if r.sealed {
		return ErrSealed
	}
	c := s.Category()
	byAsset, ok := r.sets[c]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	name, i := s.AssetName(), s.Interval()
	seq, seen := byAsset[name]
	switch {
	case i < len(seq):
		return &DuplicateRegistrationError{Category: c, Asset: name, Interval: i}
	case i > len(seq):
		return fmt.Errorf("%w: %s %q got interval %d, expected %d", ErrIntervalOrder, c, name, i, len(seq))
	}
	if !seen {
		r.order[c] = append(r.order[c], name)
	}
	byAsset[name] = append(seq, s)
	return nil
}

// Seal makes the registry read-only.
func (r *Registry) Seal() { r.sealed = true }

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool { return r.sealed }

// Assets returns the asset names of a category in registration order.
func (r *Registry) Assets(c Category) []string {
	out := make([]string, len(r.order[c]))
	copy(out, r.order[c])
	return out
}

// Intervals returns the number of intervals registered so far.
func (r *Registry) Intervals() int {
	n := 0
	for _, byAsset := range r.sets {
		for _, seq := range byAsset {
			if len(seq) > n {
				n = len(seq)
			}
		}
	}
	return n
}

// AtInterval returns the sets of category c in interval i, in asset
// registration order. An empty asset name matches every asset.
func (r *Registry) AtInterval(c Category, i int, asset string) []VariableSet {
	var out []VariableSet
	for _, name := range r.order[c] {
		if asset != "" && name != asset {
			continue
		}
		seq := r.sets[c][name]
		if i >= 0 && i < len(seq) {
			out = append(out, seq[i])
		}
	}
	return out
}

// ByInterval returns one entry per interval, each holding the sets of
// category c across assets. Categories without assets yield empty entries.
func (r *Registry) ByInterval(c Category, asset string) [][]VariableSet {
	n := r.Intervals()
	out := make([][]VariableSet, n)
	for i := 0; i < n; i++ {
		out[i] = r.AtInterval(c, i, asset)
	}
	return out
}

// AcrossTime returns one asset's sets ordered by interval.
func (r *Registry) AcrossTime(c Category, asset string) []VariableSet {
	seq := r.sets[c][asset]
	out := make([]VariableSet, len(seq))
	copy(out, seq)
	return out
}

// All returns every set of interval i, by category then asset order.
func (r *Registry) All(i int) []VariableSet {
	var out []VariableSet
	for _, c := range categories {
		out = append(out, r.AtInterval(c, i, "")...)
	}
	return out
}

// Site returns the site entry of interval i.
func (r *Registry) Site(i int) (*SiteInterval, error) {
	sites := Typed[*SiteInterval](r.AtInterval(CategorySite, i, ""))
	if len(sites) == 0 {
		return nil, fmt.Errorf("%w: site for interval %d", ErrNotFound, i)
	}
	return sites[0], nil
}

// EVArray returns the real or spill EV array of an asset in interval i.
func (r *Registry) EVArray(spill bool, i int, asset string) (*EVArray, error) {
	c := CategoryEVArray
	if spill {
		c = CategorySpillEVArray
	}
	arrays := Typed[*EVArray](r.AtInterval(c, i, asset))
	if len(arrays) == 0 {
		return nil, fmt.Errorf("%w: %s %q for interval %d", ErrNotFound, c, asset, i)
	}
	return arrays[0], nil
}

// EVArrays returns the interval-ordered arrays of an asset.
func (r *Registry) EVArrays(spill bool, asset string) []*EVArray {
	c := CategoryEVArray
	if spill {
		c = CategorySpillEVArray
	}
	return Typed[*EVArray](r.AcrossTime(c, asset))
}

// Flow sums every field named attr in interval i across all assets.
func (r *Registry) Flow(i int, attr string) lp.Expr {
	var e lp.Builder
	for _, s := range r.All(i) {
		for _, f := range s.Fields() {
			if f.Attribute == attr {
				e.Add(f.Var, 1)
			}
		}
	}
	return e.Expr()
}
