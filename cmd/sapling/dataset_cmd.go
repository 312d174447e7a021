package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pbanos/sapling/dataset"
	featureyaml "github.com/pbanos/sapling/feature/yaml"
)

type datasetCmdConfig struct {
	*rootCmdConfig
	metadataInput string
	dataInput     string
	dataOutput    string
}

type splitCmdConfig struct {
	datasetCmdConfig
	splitOutput      string
	splitProbability int
	seed             int64
}

func datasetCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &datasetCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage sets of data",
		Long:  `Copy a set of labeled data from one input to an output, possibly in a different format`,
		Run: func(cmd *cobra.Command, args []string) {
			v, err := rootConfig.Load(cmd)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.load(v)
			err = config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			features, err := featureyaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			ds, closeDS, err := openDataset(ctx, config.dataInput, features, config.log)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			defer closeDS()
			n, err := writeDataset(ctx, config.dataOutput, ds, features, config.log)
			if err != nil {
				fmt.Fprintf(os.Stderr, "writing output set: %v\n", err)
				closeDS()
				os.Exit(4)
			}
			config.log.WithField("rows", n).Info("done")
		},
	}
	cmd.PersistentFlags().StringP("metadata", "m", "", "path to a YML file with metadata describing the features on the input (required)")
	cmd.PersistentFlags().StringP("input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with the rows to read (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringP("output", "o", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL to write the rows to (defaults to STDOUT in CSV)")
	cmd.AddCommand(splitCmd(config))
	return cmd
}

func (dcc *datasetCmdConfig) load(v *viper.Viper) {
	dcc.metadataInput = v.GetString("metadata")
	dcc.dataInput = v.GetString("input")
	dcc.dataOutput = v.GetString("output")
}

func (dcc *datasetCmdConfig) Validate() error {
	if dcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}

func splitCmd(datasetConfig *datasetCmdConfig) *cobra.Command {
	config := &splitCmdConfig{datasetCmdConfig: datasetCmdConfig{rootCmdConfig: datasetConfig.rootCmdConfig}}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a set into two sets",
		Long:  `Split a set into an output set and a split set, assigning each row to the split set with a given probability`,
		Run: func(cmd *cobra.Command, args []string) {
			v, err := config.rootCmdConfig.Load(cmd)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.datasetCmdConfig.load(v)
			config.splitOutput = v.GetString("split-output")
			config.splitProbability = v.GetInt("split-probability")
			config.seed = v.GetInt64("seed")
			err = config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			features, err := featureyaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			ds, closeDS, err := openDataset(ctx, config.dataInput, features, config.log)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			defer closeDS()
			rows, err := ds.Rows(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				closeDS()
				os.Exit(3)
			}
			seed := config.seed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			kept, split := splitRows(rows, config.splitProbability, rand.New(rand.NewSource(seed)))
			n, err := writeDataset(ctx, config.dataOutput, dataset.New(kept), features, config.log)
			if err != nil {
				fmt.Fprintf(os.Stderr, "writing output set: %v\n", err)
				closeDS()
				os.Exit(4)
			}
			m, err := writeDataset(ctx, config.splitOutput, dataset.New(split), features, config.log)
			if err != nil {
				fmt.Fprintf(os.Stderr, "writing split set: %v\n", err)
				closeDS()
				os.Exit(5)
			}
			config.log.WithField("output_rows", n).WithField("split_rows", m).Info("done")
		},
	}
	cmd.Flags().IntP("split-probability", "p", 20, "probability as percent integer that a row of the set will be assigned to the split set")
	cmd.Flags().StringP("split-output", "s", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL to write the split set to (required)")
	cmd.Flags().Int64("seed", 0, "seed for the assignment of rows (defaults to 0: seeded from the current time)")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	err := scc.datasetCmdConfig.Validate()
	if err != nil {
		return err
	}
	if scc.splitOutput == "" {
		return fmt.Errorf("required split-output flag was not set")
	}
	if scc.splitProbability <= 0 || scc.splitProbability > 100 {
		return fmt.Errorf("split-probability flag was set to an invalid value: it must be set to an integer between 1 and 100")
	}
	return nil
}

// splitRows assigns each row to the split rows with the given percent
// probability, and to the kept rows otherwise. Rows keep their order.
func splitRows(rows []dataset.Row, probability int, r *rand.Rand) (kept, split []dataset.Row) {
	for _, row := range rows {
		if r.Intn(100) < probability {
			split = append(split, row)
		} else {
			kept = append(kept, row)
		}
	}
	return kept, split
}
