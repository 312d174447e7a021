package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	featurejson "github.com/pbanos/sapling/feature/json"
	"github.com/pbanos/sapling/tree"
	"github.com/pbanos/sapling/tree/dot"
	treejson "github.com/pbanos/sapling/tree/json"
)

const (
	textFormat = "text"
	jsonFormat = "json"
	dotFormat  = "dot"
)

type growCmdConfig struct {
	trainingCmdConfig
	format string
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{trainingCmdConfig: trainingCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a set of data",
		Long:  `Grow a decision tree from a set of labeled data and write it to STDOUT.`,
		Run: func(cmd *cobra.Command, args []string) {
			v, err := rootConfig.Load(cmd)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.load(v)
			config.format = v.GetString("format")
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
			config.log.Info("done growing tree")
			err = writeTree(ctx, os.Stdout, t, config.format)
			if err != nil {
				fmt.Fprintf(os.Stderr, "writing the tree: %v\n", err)
				release()
				os.Exit(5)
			}
		},
	}
	addTrainingFlags(cmd)
	cmd.Flags().StringP("format", "f", textFormat, "format to write the tree in: text, json or dot")
	return cmd
}

func (gcc *growCmdConfig) Validate() error {
	err := gcc.trainingCmdConfig.Validate()
	if err != nil {
		return err
	}
	switch gcc.format {
	case textFormat, jsonFormat, dotFormat:
		return nil
	}
	return fmt.Errorf("unknown format %q, valid formats are %s, %s and %s", gcc.format, textFormat, jsonFormat, dotFormat)
}

func writeTree(ctx context.Context, w io.Writer, t *tree.Tree, format string) error {
	switch format {
	case jsonFormat:
		return treejson.WriteJSONTree(ctx, t, treejson.NewNodeEncodeDecoder(featurejson.NewCriteriaEncodeDecoder()), w)
	case dotFormat:
		return dot.Write(ctx, t, w)
	}
	return t.WriteText(ctx, w)
}
