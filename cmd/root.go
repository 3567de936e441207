package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/ppartarr/mp3renamer/config"
	"github.com/ppartarr/mp3renamer/util"
	"github.com/ppartarr/mp3renamer/util/anchor"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	settings config.Settings
	tui      = anchor.New(anchor.Red)
	cmdRoot  = &cobra.Command{
		Use:               "mp3renamer",
		Short:             "Rename and tag mp3 files after the album they belong to",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runRename,
	}
)

func init() {
	cmdRoot.PersistentFlags().String("config", config.DefaultPath(), "Configuration file path")
	cmdRoot.PersistentFlags().String("ledger", config.Default().Ledger, "Processed files ledger path")
	cmdRoot.PersistentFlags().BoolP("verbose", "v", false, "Print debug messages")
	cmdRoot.Flags().StringP("library", "l", config.Default().Library, "Folder holding the mp3 files to rename")
	cmdRoot.Flags().Float64("threshold", config.Default().Threshold, "Similarity above which lookup results are adopted without asking")
}

func Execute() {
	if err := cmdRoot.Execute(); err != nil {
		tui.AnchorPrintf("%s", err)
		os.Exit(1)
	}
}

// setup loads environment and configuration, then lays
// the flags explicitly set on top of the configuration
func setup(cmd *cobra.Command, _ []string) error {
	tui.SetVerbose(util.ErrWrap(false)(cmd.Flags().GetBool("verbose")))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		tui.Warnf("cannot load .env file: %s", err)
	}

	var err error
	if settings, err = config.Load(util.ErrWrap(config.DefaultPath())(cmd.Flags().GetString("config"))); err != nil {
		return err
	}

	cmd.Flags().Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "library":
			settings.Library = flag.Value.String()
		case "ledger":
			settings.Ledger = flag.Value.String()
		case "threshold":
			settings.Threshold = util.ErrWrap(settings.Threshold)(cmd.Flags().GetFloat64("threshold"))
		default:
			return
		}
		tui.Debugf("%s overridden by flag: %s", flag.Name, flag.Value)
	})
	return settings.Validate()
}
