package bench

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/dstream/types"
	"github.com/outofforest/logger"
)

func TestRun(t *testing.T) {
	requireT := require.New(t)

	config := Config{
		Algorithms: []string{string(types.AlgorithmTilted), string(types.AlgorithmSteadyMerge)},
		DataTypes:  []string{DataTypeUint32, DataTypeBool},
		Capacities: []uint32{64},
		NumItems:   []uint32{1000},
		Replicates: 2,
	}

	buf := &bytes.Buffer{}
	requireT.NoError(Run(newContext(t), config, buf))

	records, err := csv.NewReader(buf).ReadAll()
	requireT.NoError(err)
	requireT.Len(records, 9)
	requireT.Equal(Header, records[0])

	requireT.Equal([]string{"dstream_tilted_algo", "double word", "260", "1000", "64", "0"}, records[1][:6])
	requireT.Equal([]string{"dstream_tilted_algo", "double word", "260", "1000", "64", "1"}, records[2][:6])
	requireT.Equal([]string{"dstream_tilted_algo", "bit", "12", "1000", "64", "0"}, records[3][:6])
	requireT.Equal([]string{"zhao_steady_algo", "double word", "516", "1000", "64", "0"}, records[5][:6])
	for _, r := range records[1:] {
		requireT.Len(r, len(Header))
		requireT.NotEmpty(r[6])
	}
}

func TestRunCanceled(t *testing.T) {
	requireT := require.New(t)

	ctx, cancel := context.WithCancel(newContext(t))
	cancel()

	config := DefaultConfig
	config.NumItems = []uint32{10}
	config.Replicates = 1

	err := Run(ctx, config, &bytes.Buffer{})
	requireT.Error(err)
	requireT.True(errors.Is(err, context.Canceled))
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	requireT := require.New(t)

	config := DefaultConfig
	config.Replicates = 0
	requireT.Error(Run(newContext(t), config, &bytes.Buffer{}))
}

func TestExecuteIsDeterministic(t *testing.T) {
	requireT := require.New(t)

	trial := Trial{
		Algorithm: types.AlgorithmTiltedMergeFast,
		DataType:  DataTypeUint16,
		NumSites:  256,
		NumItems:  5000,
	}

	var r1, r2 Result
	requireT.NoError(Execute(trial, &r1))
	trial.Replicate = 1
	requireT.NoError(Execute(trial, &r2))

	requireT.Equal(r1.Fingerprint, r2.Fingerprint)
	requireT.Equal("word", r1.DataTypeName)
	requireT.Equal(uint64(256*2+256*4+4), r1.MemoryBytes)
	requireT.Equal(uint32(1), r2.Replicate)

	trial.DataType = "float"
	requireT.Error(Execute(trial, &r1))
}

func TestMemoryBytes(t *testing.T) {
	requireT := require.New(t)

	requireT.Equal(uint64(4096*4+4), MemoryBytes[uint32](types.AlgorithmStretched, 4096))
	requireT.Equal(uint64(4096*8+4), MemoryBytes[uint64](types.AlgorithmRing, 4096))
	requireT.Equal(uint64(64+4), MemoryBytes[uint8](types.AlgorithmGuntherDoubling, 64))
	requireT.Equal(uint64(8+4), MemoryBytes[bool](types.AlgorithmDiscard, 64))
	requireT.Equal(uint64(64*1+64*4+4), MemoryBytes[uint8](types.AlgorithmMinPairMerge, 64))
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Algorithms: []string{string(types.AlgorithmRing)},
		DataTypes:  []string{DataTypeUint8},
		Capacities: []uint32{64},
		NumItems:   []uint32{100},
		Replicates: 1,
	}
	require.NoError(t, valid.Validate())
	require.NoError(t, DefaultConfig.Validate())

	tests := []func(c *Config){
		func(c *Config) { c.Algorithms = nil },
		func(c *Config) { c.Algorithms = []string{"unknown"} },
		func(c *Config) { c.DataTypes = nil },
		func(c *Config) { c.DataTypes = []string{"float"} },
		func(c *Config) { c.Capacities = nil },
		func(c *Config) { c.Capacities = []uint32{48} },
		func(c *Config) { c.Capacities = []uint32{16} },
		func(c *Config) { c.NumItems = nil },
		func(c *Config) { c.Replicates = 0 },
	}

	for _, modify := range tests {
		t.Run("", func(t *testing.T) {
			c := valid
			modify(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestTrials(t *testing.T) {
	requireT := require.New(t)

	trials := DefaultConfig.Trials()
	requireT.Len(trials, 10*5*4*3*10)
	requireT.Equal(Trial{
		Algorithm: types.AlgorithmRing,
		DataType:  DataTypeUint64,
		NumSites:  4096,
		NumItems:  10_000,
		Replicate: 0,
	}, trials[0])
	requireT.Equal(uint32(9), trials[9].Replicate)
	requireT.Equal(uint32(100_000), trials[10].NumItems)
	requireT.Equal(DataTypeUint32, trials[4*3*10].DataType)
}

func TestLoadConfig(t *testing.T) {
	requireT := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "bench.toml")
	requireT.NoError(os.WriteFile(path, []byte(`
algorithms = ["dstream_tilted_algo"]
capacities = [128]
replicates = 3
`), 0o600))

	config := DefaultConfig
	requireT.NoError(LoadConfig(path, &config))
	requireT.Equal([]string{"dstream_tilted_algo"}, config.Algorithms)
	requireT.Equal([]uint32{128}, config.Capacities)
	requireT.Equal(uint32(3), config.Replicates)
	requireT.Equal(DefaultConfig.NumItems, config.NumItems)
	requireT.Equal(DefaultConfig.DataTypes, config.DataTypes)

	badPath := filepath.Join(dir, "bad.toml")
	requireT.NoError(os.WriteFile(badPath, []byte(`sites = 5`), 0o600))
	requireT.Error(LoadConfig(badPath, &config))

	requireT.Error(LoadConfig(filepath.Join(dir, "missing.toml"), &config))
}

func TestParseFlags(t *testing.T) {
	requireT := require.New(t)

	config, err := ParseFlags(nil)
	requireT.NoError(err)
	requireT.Equal(DefaultConfig, config)

	config, err = ParseFlags([]string{
		"--algorithm=zhao_steady_algo,zhao_tilted_algo",
		"--capacity=64,128",
		"--items=100",
		"--replicates=3",
	})
	requireT.NoError(err)
	requireT.Equal(Config{
		Algorithms: []string{"zhao_steady_algo", "zhao_tilted_algo"},
		DataTypes:  DefaultConfig.DataTypes,
		Capacities: []uint32{64, 128},
		NumItems:   []uint32{100},
		Replicates: 3,
	}, config)

	path := filepath.Join(t.TempDir(), "bench.toml")
	requireT.NoError(os.WriteFile(path, []byte(`
data_types = ["bool"]
replicates = 5
`), 0o600))

	config, err = ParseFlags([]string{"--config", path, "--replicates=2"})
	requireT.NoError(err)
	requireT.Equal([]string{DataTypeBool}, config.DataTypes)
	requireT.Equal(uint32(2), config.Replicates)

	_, err = ParseFlags([]string{"--capacity=48"})
	requireT.Error(err)
	_, err = ParseFlags([]string{"--unknown"})
	requireT.Error(err)
}

func newContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), logger.New(logger.DefaultConfig)))
	t.Cleanup(cancel)
	return ctx
}
