package bench

import (
	"time"

	"github.com/pkg/errors"

	"github.com/outofforest/dstream"
	"github.com/outofforest/dstream/generator"
	"github.com/outofforest/dstream/types"
	"github.com/outofforest/photon"
)

// Data types of benchmarked payloads.
const (
	DataTypeBool   = "bool"
	DataTypeUint8  = "uint8"
	DataTypeUint16 = "uint16"
	DataTypeUint32 = "uint32"
	DataTypeUint64 = "uint64"
)

// positionCounterBytes is the size of the stream position kept by every curator.
const positionCounterBytes = 4

// Trial describes single benchmark execution.
type Trial struct {
	Algorithm types.Algorithm
	DataType  string
	NumSites  types.Capacity
	NumItems  uint32
	Replicate uint32
}

// Result is the outcome of the trial.
type Result struct {
	Trial

	DataTypeName string
	MemoryBytes  uint64
	Duration     time.Duration
	Fingerprint  uint64
}

type executor func(trial Trial, result *Result) error

var executors = map[string]executor{
	DataTypeBool:   execute[bool],
	DataTypeUint8:  execute[uint8],
	DataTypeUint16: execute[uint16],
	DataTypeUint32: execute[uint32],
	DataTypeUint64: execute[uint64],
}

// Execute runs the trial and stores the outcome in result.
func Execute(trial Trial, result *Result) error {
	e, exists := executors[trial.DataType]
	if !exists {
		return errors.Errorf("unknown data type %q", trial.DataType)
	}
	return e(trial, result)
}

func execute[V generator.Payload](trial Trial, result *Result) error {
	c, err := dstream.New[V](dstream.Config{
		Algorithm: trial.Algorithm,
		Capacity:  trial.NumSites,
	})
	if err != nil {
		return err
	}

	g := generator.NewDefault()

	start := time.Now()
	for range trial.NumItems {
		c.Insert(generator.Value[V](g))
	}
	duration := time.Since(start)

	*result = Result{
		Trial:        trial,
		DataTypeName: generator.Name[V](),
		MemoryBytes:  MemoryBytes[V](trial.Algorithm, trial.NumSites),
		Duration:     duration,
		Fingerprint:  dstream.Fingerprint(c),
	}
	return nil
}

// MemoryBytes estimates the memory occupied by the curator state. Boolean payloads are counted as bits.
func MemoryBytes[V generator.Payload](algorithm types.Algorithm, capacity types.Capacity) uint64 {
	var v V
	sites := uint64(capacity)
	payload := sites * uint64(len(photon.NewFromValue(&v).B))
	if _, ok := any(v).(bool); ok {
		payload = (sites + 7) / 8
	}

	switch algorithm {
	case types.AlgorithmSteadyMerge, types.AlgorithmTiltedMerge, types.AlgorithmTiltedMergeFast,
		types.AlgorithmMinPairMerge:
		// Every segment carries its length.
		return payload + sites*4 + positionCounterBytes
	default:
		return payload + positionCounterBytes
	}
}
