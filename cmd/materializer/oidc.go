package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/osp-containers/materializer/internal/config"
	"github.com/osp-containers/materializer/internal/fragments"
	"github.com/osp-containers/materializer/internal/materialize"
	"github.com/osp-containers/materializer/internal/onepass"
	"github.com/osp-containers/materializer/internal/target"
	"github.com/osp-containers/materializer/internal/validation"
)

func newOIDCCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "oidc [httpd-args...]",
		Short: "Generate the OIDC credentials snippet, then exec the web server",
		Long: `oidc regenerates the OIDC credentials snippet at OIDC_CONFIG_FILE from
secret files mounted under OIDC_SECRETS_DIR, restricts it to owner-only
access, then replaces itself with the web server binary, passing the given
arguments through. The snippet is written even when no secrets are mounted
so an optional include of it always resolves.`,
		// httpd's argv must pass through untouched.
		DisableFlagParsing: true,
		RunE:               runOIDC,
	}
}

func runOIDC(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings, err := config.LoadGenerate()
	if err != nil {
		return err
	}

	v := validation.NewValidator()
	if err := v.ValidateSecretsDir("OIDC_SECRETS_DIR", settings.SecretsDir); err != nil {
		return err
	}
	if err := v.ValidatePath("OIDC_CONFIG_FILE", settings.OutputFile); err != nil {
		return err
	}

	resolver, err := newResolver(ctx, settings.TokenFile)
	if err != nil {
		return err
	}

	generator := materialize.Generator{
		Source:     fragments.Source{Dir: settings.SecretsDir},
		OutputFile: settings.OutputFile,
		Resolver:   resolver,
	}
	if err := generator.Run(ctx); err != nil {
		return err
	}

	argv := append([]string{settings.HTTPDBin}, args...)
	return target.Exec(argv, os.Environ())
}

// newResolver returns a 1Password-backed fragment resolver when a service
// account token is configured, nil otherwise.
func newResolver(ctx context.Context, tokenFile string) (fragments.Resolver, error) {
	if !onepass.Enabled(tokenFile) {
		return nil, nil
	}
	client, err := onepass.NewClient(ctx, tokenFile)
	if err != nil {
		return nil, err
	}
	return client, nil
}
