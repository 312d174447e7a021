package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	trainingCmdConfig
	testingInput string
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{trainingCmdConfig: trainingCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the performance of a tree",
		Long:  `Grow a tree from a set of labeled data and test its performance against a testing set`,
		Run: func(cmd *cobra.Command, args []string) {
			v, err := rootConfig.Load(cmd)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.load(v)
			config.testingInput = v.GetString("testing")
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
			testingSet, closeTestingSet, err := openDataset(ctx, config.testingInput, t.Features, config.log)
			if err != nil {
				fmt.Fprintf(os.Stderr, "reading testing set: %v\n", err)
				release()
				os.Exit(5)
			}
			defer closeTestingSet()
			count, err := testingSet.Count(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "counting testing set samples: %v\n", err)
				closeTestingSet()
				release()
				os.Exit(5)
			}
			config.log.WithField("rows", count).Info("testing tree")
			successRate, err := t.Test(ctx, testingSet)
			if err != nil {
				fmt.Fprintf(os.Stderr, "testing tree: %v\n", err)
				closeTestingSet()
				release()
				os.Exit(6)
			}
			fmt.Printf("%f success rate\n", successRate)
		},
	}
	addTrainingFlags(cmd)
	cmd.Flags().StringP("testing", "t", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with the labeled rows to test the tree against (required)")
	return cmd
}

func (tcc *testCmdConfig) Validate() error {
	err := tcc.trainingCmdConfig.Validate()
	if err != nil {
		return err
	}
	if tcc.testingInput == "" {
		return fmt.Errorf("required testing flag was not set")
	}
	return nil
}
