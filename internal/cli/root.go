package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // explicit config file path

	cfg *viper.Viper // layered config, populated in PersistentPreRunE
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pir CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pir",
		Short: "pir - process intermediate representation",
		Long: `Parse, validate, convert and archive process models across notations
through one shared intermediate representation.`,
		SilenceErrors: true, // Errors are printed once by the caller with the right exit code
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfig(cmd, opts); err != nil {
				return NewExitError(ExitCommandError, err.Error())
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			configureLogging(opts)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default $HOME/.pir.yaml)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewHashCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))

	return cmd
}

// applyConfig layers the config file and PIR_* environment variables under
// explicitly set flags. Precedence: flag > env > config file > built-in
// default. A missing config file is fine unless it was named explicitly.
func applyConfig(cmd *cobra.Command, opts *RootOptions) error {
	v := viper.New()
	if opts.Config != "" {
		v.SetConfigFile(opts.Config)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(".pir")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	// Flags the user did not set fall back to config/env values. The flag
	// instances live on the root's persistent set, so Changed is visible
	// from any subcommand.
	flags := cmd.Root().PersistentFlags()
	if !flags.Changed("format") && v.IsSet("format") {
		opts.Format = v.GetString("format")
	}
	if !flags.Changed("verbose") && v.IsSet("verbose") {
		opts.Verbose = v.GetBool("verbose")
	}

	opts.cfg = v
	return nil
}

// configureLogging installs the process-wide slog handler on stderr.
// Command output never goes through the logger; only diagnostics do.
func configureLogging(opts *RootOptions) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// DatabasePath resolves the archive location: the explicit flag wins, then
// the config/env "db" key, then $HOME/.pir/pir.db.
func (o *RootOptions) DatabasePath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if o.cfg != nil && o.cfg.IsSet("db") {
		return o.cfg.GetString("db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving default database path: %w", err)
	}
	return filepath.Join(home, ".pir", "pir.db"), nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
