package materialize

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/osp-containers/materializer/internal/errors"
	"github.com/osp-containers/materializer/internal/fragments"
)

// outputMode keeps the generated credentials readable by the owner only.
const outputMode = 0o600

// Directive pairs a recognized fragment filename with the config keyword its
// value is emitted under.
type Directive struct {
	Fragment string
	Keyword  string
}

// OIDCDirectives is the closed mapping from mounted secret names to
// mod_auth_openidc directives. Fragment files with other names are ignored.
var OIDCDirectives = []Directive{
	{Fragment: "client_secret", Keyword: "OIDCClientSecret"},
	{Fragment: "crypto_passphrase", Keyword: "OIDCCryptoPassphrase"},
}

// Generate renders the credentials snippet: a header comment with the
// generation timestamp, then one directive line per mapped fragment present.
// Values are stripped of trailing newlines and double-quoted.
func Generate(frags []fragments.Fragment, directives []Directive, now time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Generated by materializer at %s\n", now.UTC().Format(time.RFC3339))

	for _, d := range directives {
		f, ok := fragments.Lookup(frags, d.Fragment)
		if !ok {
			continue
		}
		value := strings.TrimRight(string(f.Data), "\r\n")
		fmt.Fprintf(&buf, "%s %q\n", d.Keyword, value)
	}

	return buf.Bytes()
}

// Generator (re)writes the OIDC credentials snippet from mounted secret
// files. The output file is always produced, header-only when the secrets
// directory is absent, so an optional include of it never fails to resolve.
type Generator struct {
	Source     fragments.Source
	OutputFile string
	Directives []Directive
	Resolver   fragments.Resolver
	Log        *slog.Logger
	Now        func() time.Time
}

func (g Generator) Run(ctx context.Context) error {
	log := g.Log
	if log == nil {
		log = slog.Default()
	}
	now := g.Now
	if now == nil {
		now = time.Now
	}
	directives := g.Directives
	if directives == nil {
		directives = OIDCDirectives
	}

	frags, ok, err := g.Source.List(ctx, g.Resolver)
	if err != nil {
		return err
	}
	if !ok {
		log.Info("secrets directory not present, generating header-only file",
			"secrets_dir", g.Source.Dir)
	}

	for _, f := range frags {
		if !recognized(f.Name, directives) {
			log.Debug("ignoring unrecognized secret fragment", "fragment", f.Name)
		}
	}

	content := Generate(frags, directives, now())

	if err := os.WriteFile(g.OutputFile, content, outputMode); err != nil {
		return errors.ArtifactError("Writing credentials snippet", g.OutputFile,
			"Failed to write generated configuration", err)
	}
	// WriteFile only applies the mode on create; a pre-existing file keeps
	// its old bits, so tighten explicitly.
	if err := os.Chmod(g.OutputFile, outputMode); err != nil {
		return errors.ArtifactError("Setting credentials snippet permissions", g.OutputFile,
			"Failed to restrict file mode to owner-only", err)
	}

	log.Info("generated credentials snippet", "output_file", g.OutputFile)
	return nil
}

func recognized(name string, directives []Directive) bool {
	for _, d := range directives {
		if d.Fragment == name {
			return true
		}
	}
	return false
}
