package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/tree"
)

type classifyCmdConfig struct {
	trainingCmdConfig
	samplesInput string
}

func classifyCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &classifyCmdConfig{trainingCmdConfig: trainingCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify samples with a tree",
		Long:  `Grow a tree from a set of labeled data and use it to classify every sample on another input, printing their ids along the predicted label and its confidence`,
		Run: func(cmd *cobra.Command, args []string) {
			v, err := rootConfig.Load(cmd)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.load(v)
			config.samplesInput = v.GetString("samples")
			err = config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			t, release, code, err := config.trainedTree(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(code)
			}
			defer release()
			samples, closeSamples, err := openDataset(ctx, config.samplesInput, t.Features, config.log)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading samples: %v\n", err)
				release()
				os.Exit(5)
			}
			defer closeSamples()
			err = classify(ctx, os.Stdout, t, samples)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				closeSamples()
				release()
				os.Exit(6)
			}
		},
	}
	addTrainingFlags(cmd)
	cmd.Flags().StringP("samples", "s", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with the samples to classify (required)")
	return cmd
}

func (ccc *classifyCmdConfig) Validate() error {
	err := ccc.trainingCmdConfig.Validate()
	if err != nil {
		return err
	}
	if ccc.samplesInput == "" {
		return fmt.Errorf("required samples flag was not set")
	}
	return nil
}

// classify writes a line per row of the samples with its id, the label
// predicted for it by the tree and the confidence of the prediction.
func classify(ctx context.Context, w io.Writer, t *tree.Tree, samples dataset.Dataset) error {
	rows, err := samples.Rows(ctx)
	if err != nil {
		return fmt.Errorf("reading samples: %v", err)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tprediction\tconfidence")
	for i, r := range rows {
		p, err := t.Classify(ctx, r)
		if err != nil {
			return fmt.Errorf("classifying sample %d (%s): %w", i, r.ID(), err)
		}
		label, confidence := p.PredictedValue()
		fmt.Fprintf(tw, "%s\t%s\t%d%%\n", r.ID(), label, confidence)
	}
	return tw.Flush()
}
