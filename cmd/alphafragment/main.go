// Package main provides the alphafragment command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/alphafragment/internal/fragment"
	"github.com/inodb/alphafragment/internal/protein"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".alphafragment"

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	viper.Reset()
	setDefaults()

	var cfgFile string
	cmd := &cobra.Command{
		Use:   "alphafragment",
		Short: "Split proteins into domain-preserving fragments for structure prediction",
		Long: `alphafragment splits protein sequences into overlapping fragments of bounded
length without cutting through annotated domains, and writes fragment pairs for
AlphaPulldown or paired FASTA prediction runs.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/"+configName+".yaml)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))

	cmd.AddCommand(newFragmentCmd())
	cmd.AddCommand(newPairsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDocsCmd())

	return cmd
}

func setDefaults() {
	opts := fragment.DefaultOptions()
	viper.SetDefault("length.min", opts.Length.Min)
	viper.SetDefault("length.ideal", opts.Length.Ideal)
	viper.SetDefault("length.max", opts.Length.Max)
	viper.SetDefault("overlap.min", opts.Overlap.Min)
	viper.SetDefault("overlap.ideal", opts.Overlap.Ideal)
	viper.SetDefault("overlap.max", opts.Overlap.Max)
	viper.SetDefault("len_increase", opts.LenIncrease)
	viper.SetDefault("time_limit", opts.TimeLimit)
	viper.SetDefault("workers", 0)
	viper.SetDefault("sources.manual", true)
	viper.SetDefault("sources.tsv", false)
}

// initConfig reads the config file and environment. A missing default config
// file is not an error.
func initConfig(cfgFile string) error {
	viper.SetEnvPrefix("ALPHAFRAGMENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	viper.AddConfigPath(home)
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// defaultConfigPath is where config set writes when no file was loaded.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if viper.GetBool("verbose") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// optionsFromConfig builds fragmenter options from the merged configuration.
func optionsFromConfig() (fragment.Options, error) {
	opts := fragment.Options{
		Length: protein.Window{
			Min:   viper.GetInt("length.min"),
			Ideal: viper.GetInt("length.ideal"),
			Max:   viper.GetInt("length.max"),
		},
		Overlap: protein.Window{
			Min:   viper.GetInt("overlap.min"),
			Ideal: viper.GetInt("overlap.ideal"),
			Max:   viper.GetInt("overlap.max"),
		},
		LenIncrease: viper.GetInt("len_increase"),
		TimeLimit:   viper.GetDuration("time_limit"),
	}
	if err := opts.Validate(); err != nil {
		return fragment.Options{}, err
	}
	return opts, nil
}
