package bench

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/pflag"

	"github.com/outofforest/dstream"
	"github.com/outofforest/dstream/types"
)

// MinCapacity is the smallest capacity accepted by the benchmark. Smaller buffers saturate before
// the largest streams are consumed.
const MinCapacity types.Capacity = 32

// Config stores benchmark configuration.
type Config struct {
	Algorithms []string `toml:"algorithms"`
	DataTypes  []string `toml:"data_types"`
	Capacities []uint32 `toml:"capacities"`
	NumItems   []uint32 `toml:"num_items"`
	Replicates uint32   `toml:"replicates"`

	// Output is the path of the CSV report. Report is written to standard output if empty.
	Output string `toml:"output"`
}

// DefaultConfig is the configuration reproducing the full benchmark.
var DefaultConfig = Config{
	Algorithms: lo.Map(dstream.Algorithms(), func(a types.Algorithm, _ int) string {
		return string(a)
	}),
	DataTypes:  []string{DataTypeUint64, DataTypeUint32, DataTypeUint16, DataTypeUint8, DataTypeBool},
	Capacities: []uint32{4096, 1024, 256, 64},
	NumItems:   []uint32{10_000, 100_000, 1_000_000},
	Replicates: 10,
}

// LoadConfig loads configuration from TOML file on top of the provided one.
func LoadConfig(path string, config *Config) error {
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return errors.Wrapf(err, "decoding config file %q failed", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.Errorf("unsupported key %q in config file %q", undecoded[0].String(), path)
	}
	return nil
}

// ParseFlags builds configuration from command line arguments. If config file is specified it is loaded first,
// then values of explicitly set flags replace the ones from the file.
func ParseFlags(args []string) (Config, error) {
	config := DefaultConfig
	var (
		configFile string
		flags      Config
	)

	fs := pflag.NewFlagSet("dstream-bench", pflag.ContinueOnError)
	fs.StringVar(&configFile, "config", "", "Path to the TOML config file")
	fs.StringSliceVar(&flags.Algorithms, "algorithm", config.Algorithms, "Algorithms to benchmark")
	fs.StringSliceVar(&flags.DataTypes, "data-type", config.DataTypes, "Payload types to benchmark")
	capacities := fs.UintSlice("capacity", lo.Map(config.Capacities, toUint), "Buffer capacities to benchmark")
	numItems := fs.UintSlice("items", lo.Map(config.NumItems, toUint), "Stream lengths to benchmark")
	fs.Uint32Var(&flags.Replicates, "replicates", config.Replicates, "Number of replicates of each trial")
	fs.StringVarP(&flags.Output, "output", "o", config.Output, "Path of the CSV report")

	if err := fs.Parse(args); err != nil {
		return Config{}, errors.WithStack(err)
	}

	if configFile != "" {
		if err := LoadConfig(configFile, &config); err != nil {
			return Config{}, err
		}
	}

	if fs.Changed("algorithm") {
		config.Algorithms = flags.Algorithms
	}
	if fs.Changed("data-type") {
		config.DataTypes = flags.DataTypes
	}
	if fs.Changed("capacity") {
		config.Capacities = lo.Map(*capacities, fromUint)
	}
	if fs.Changed("items") {
		config.NumItems = lo.Map(*numItems, fromUint)
	}
	if fs.Changed("replicates") {
		config.Replicates = flags.Replicates
	}
	if fs.Changed("output") {
		config.Output = flags.Output
	}

	return config, config.Validate()
}

// Validate verifies that configuration is correct.
func (c Config) Validate() error {
	if len(c.Algorithms) == 0 {
		return errors.New("no algorithms to benchmark")
	}
	for _, a := range c.Algorithms {
		if _, err := dstream.Describe(types.Algorithm(a)); err != nil {
			return err
		}
	}
	if len(c.DataTypes) == 0 {
		return errors.New("no data types to benchmark")
	}
	for _, dt := range c.DataTypes {
		if _, exists := executors[dt]; !exists {
			return errors.Errorf("unknown data type %q", dt)
		}
	}
	if len(c.Capacities) == 0 {
		return errors.New("no capacities to benchmark")
	}
	for _, capacity := range c.Capacities {
		if err := types.Capacity(capacity).Validate(); err != nil {
			return err
		}
		if types.Capacity(capacity) < MinCapacity {
			return errors.Errorf("capacity %d is below minimum %d", capacity, MinCapacity)
		}
	}
	if len(c.NumItems) == 0 {
		return errors.New("no stream lengths to benchmark")
	}
	if c.Replicates == 0 {
		return errors.New("number of replicates must be positive")
	}
	return nil
}

// Trials returns the list of trials to execute.
func (c Config) Trials() []Trial {
	trials := make([]Trial, 0, len(c.Algorithms)*len(c.DataTypes)*len(c.Capacities)*len(c.NumItems)*
		int(c.Replicates))
	for _, a := range c.Algorithms {
		for _, dt := range c.DataTypes {
			for _, capacity := range c.Capacities {
				for _, n := range c.NumItems {
					for r := range c.Replicates {
						trials = append(trials, Trial{
							Algorithm: types.Algorithm(a),
							DataType:  dt,
							NumSites:  types.Capacity(capacity),
							NumItems:  n,
							Replicate: r,
						})
					}
				}
			}
		}
	}
	return trials
}

func toUint(v uint32, _ int) uint {
	return uint(v)
}

func fromUint(v uint, _ int) uint32 {
	return uint32(v)
}
