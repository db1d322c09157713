package dstream

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/outofforest/dstream/site"
	"github.com/outofforest/dstream/types"
)

// Curator decides which items of the stream are retained in the buffer of fixed capacity.
type Curator[V any] interface {
	// Algorithm returns the name of the curation algorithm.
	Algorithm() types.Algorithm

	// Capacity returns the number of storage sites.
	Capacity() types.Capacity

	// Insert passes the next item of the stream to the curator.
	Insert(value V)

	// Count returns the number of items inserted so far.
	Count() uint64

	// Retained returns the currently retained values, oldest first for history-ordered algorithms
	// and in site order for the site-assigning ones.
	Retained() []V
}

// Config stores curator configuration.
type Config struct {
	Algorithm types.Algorithm
	Capacity  types.Capacity
}

var descriptions = map[types.Algorithm]string{
	types.AlgorithmStretched:       "closed-form site assignment spreading retained items evenly over the whole history",
	types.AlgorithmTilted:          "closed-form site assignment favouring recent items",
	types.AlgorithmRing:            "ring buffer keeping the most recent items",
	types.AlgorithmDiscard:         "discards every item",
	types.AlgorithmGuntherDoubling: "doubling buffer keeping items at a growing stride",
	types.AlgorithmDoublingTilted:  "doubling buffer keeping every recent item and thinning the older half",
	types.AlgorithmSteadyMerge:     "segment-merge with evenly growing segment levels, denser towards recent items",
	types.AlgorithmTiltedMerge:     "segment-merge keeping segments doubling in length with age, full scan",
	types.AlgorithmTiltedMergeFast: "segment-merge keeping segments doubling in length with age, level counters",
	types.AlgorithmMinPairMerge:    "segment-merge joining the adjacent pair covering the fewest items",
}

// Algorithms returns names of all the supported algorithms, sorted.
func Algorithms() []types.Algorithm {
	algorithms := lo.Keys(descriptions)
	sort.Slice(algorithms, func(i, j int) bool {
		return algorithms[i] < algorithms[j]
	})
	return algorithms
}

// Describe returns short description of the algorithm.
func Describe(algorithm types.Algorithm) (string, error) {
	d, exists := descriptions[algorithm]
	if !exists {
		return "", errors.Errorf("unknown algorithm %q", algorithm)
	}
	return d, nil
}

// New creates curator running the configured algorithm.
func New[V any](config Config) (Curator[V], error) {
	if _, exists := descriptions[config.Algorithm]; !exists {
		return nil, errors.Errorf("unknown algorithm %q", config.Algorithm)
	}
	if err := config.Capacity.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid capacity for algorithm %q", config.Algorithm)
	}

	switch config.Algorithm {
	case types.AlgorithmGuntherDoubling, types.AlgorithmDoublingTilted:
		return newDoublingCurator[V](config)
	case types.AlgorithmSteadyMerge, types.AlgorithmTiltedMerge, types.AlgorithmTiltedMergeFast,
		types.AlgorithmMinPairMerge:
		return newSegmentCurator[V](config)
	default:
		a, err := newAssigner(config)
		if err != nil {
			return nil, errors.Wrapf(err, "creating assigner %q failed", config.Algorithm)
		}
		return NewSiteCurator[V](config.Algorithm, a), nil
	}
}

func newAssigner(config Config) (site.Assigner, error) {
	switch config.Algorithm {
	case types.AlgorithmStretched:
		return site.NewStretched(config.Capacity)
	case types.AlgorithmTilted:
		return site.NewTilted(config.Capacity)
	case types.AlgorithmRing:
		return site.NewRing(config.Capacity)
	case types.AlgorithmDiscard:
		return site.NewDiscard(config.Capacity)
	default:
		return nil, errors.Errorf("algorithm %q does not assign sites", config.Algorithm)
	}
}
