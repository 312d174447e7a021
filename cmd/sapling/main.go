package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SAPLING"

type rootCmdConfig struct {
	verbose    bool
	configFile string
	log        *logrus.Logger
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	config := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:   "sapling",
		Short: "sapling is a tool to grow decision trees",
		Long:  `A tool to grow binary decision trees from labeled data, test them, and use them to classify samples`,
	}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "log the progress of the commands on STDERR")
	rootCmd.PersistentFlags().StringVar(&(config.configFile), "config", "", "path to a YAML file with values for any flag, keyed by flag name")
	rootCmd.AddCommand(versionCmd(), growCmd(config), classifyCmd(config), testCmd(config), datasetCmd(config))
	return rootCmd
}

/*
Load binds the flags of the given command on a new viper instance that
also reads SAPLING_ prefixed environment variables (with dashes in the
flag names replaced by underscores) and the config file if one is set.
Flags set on the command line take precedence over environment variables,
which take precedence over the config file. It also sets up the logger
according to the resulting verbosity.
*/
func (rcc *rootCmdConfig) Load(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("binding flags: %v", err)
	}
	configFile := v.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
		err = v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %v", configFile, err)
		}
	}
	rcc.configFile = configFile
	rcc.verbose = v.GetBool("verbose")
	rcc.log = newLogger(rcc.verbose)
	return v, nil
}
