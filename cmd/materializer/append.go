package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/osp-containers/materializer/internal/config"
	"github.com/osp-containers/materializer/internal/fragments"
	"github.com/osp-containers/materializer/internal/materialize"
	"github.com/osp-containers/materializer/internal/target"
	"github.com/osp-containers/materializer/internal/validation"
)

func newAppendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "append <command> [args...]",
		Short: "Append mounted secret fragments to the service config, then exec the command",
		Long: `append merges *.conf fragments from OSLO_SECRETS_DIR onto the wrapped
service's main configuration file, then replaces itself with the given
command. The config file is taken from OSLO_CONFIG_FILE or derived from the
command line; when neither resolves, or the secrets directory is absent, the
merge is skipped and the command is exec'd as-is.`,
		// The wrapped command's argv must pass through untouched.
		DisableFlagParsing: true,
		RunE:               runAppend,
	}
}

func runAppend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(args) == 0 {
		return fmt.Errorf("append: target command required")
	}

	settings, err := config.LoadAppend()
	if err != nil {
		return err
	}

	v := validation.NewValidator()
	if err := v.ValidateSecretsDir("OSLO_SECRETS_DIR", settings.SecretsDir); err != nil {
		return err
	}
	if err := v.ValidatePath("OSLO_CONFIG_FILE", settings.ConfigFile); err != nil {
		return err
	}

	configFile := settings.ConfigFile
	if configFile == "" {
		table, err := settings.Table()
		if err != nil {
			return err
		}
		if derived, ok := target.DeriveConfig(args, table); ok {
			configFile = derived
		} else {
			slog.Info("no known service on command line, skipping secret merge",
				"command", args[0])
		}
	}

	resolver, err := newResolver(ctx, settings.TokenFile)
	if err != nil {
		return err
	}

	appender := materialize.Appender{
		Source:     fragments.Source{Dir: settings.SecretsDir, Ext: ".conf"},
		ConfigFile: configFile,
		Resolver:   resolver,
	}
	if err := appender.Run(ctx); err != nil {
		return err
	}

	return target.Exec(args, os.Environ())
}
