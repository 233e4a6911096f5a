package materialize

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/osp-containers/materializer/internal/errors"
	"github.com/osp-containers/materializer/internal/fragments"
)

// Append merges fragments onto the artifact bytes: a blank line, an
// attribution comment naming the fragment, then the fragment's raw content.
// A fragment that does not end in a newline gets one so the next comment
// starts a line. The original artifact bytes are an exact prefix of the
// result.
func Append(artifact []byte, frags []fragments.Fragment) []byte {
	var buf bytes.Buffer
	buf.Write(artifact)

	for _, f := range frags {
		buf.WriteByte('\n')
		fmt.Fprintf(&buf, "# appended from %s\n", f.Name)
		buf.Write(f.Data)
		if len(f.Data) > 0 && f.Data[len(f.Data)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes()
}

// Appender merges mounted secret fragments onto a service's main
// configuration file. An absent secrets directory, an empty config path, or
// a config file that does not exist on disk all skip the merge; the service
// is then started with its configuration as shipped.
//
// Repeated runs append the same fragments again. The entrypoint runs exactly
// once per container lifecycle, so no deduplication is attempted.
type Appender struct {
	Source     fragments.Source
	ConfigFile string
	Resolver   fragments.Resolver
	Log        *slog.Logger
}

// Run performs the merge. It returns nil both after a successful merge and
// after a deliberate skip.
func (a Appender) Run(ctx context.Context) error {
	log := a.Log
	if log == nil {
		log = slog.Default()
	}

	if a.ConfigFile == "" {
		log.Info("no target config file resolved, skipping secret merge")
		return nil
	}

	existing, err := os.ReadFile(a.ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("target config file not present, skipping secret merge",
				"config_file", a.ConfigFile)
			return nil
		}
		return errors.ArtifactError("Reading target config", a.ConfigFile,
			"Failed to read existing configuration", err)
	}

	frags, ok, err := a.Source.List(ctx, a.Resolver)
	if err != nil {
		return err
	}
	if !ok {
		log.Info("secrets directory not present, skipping secret merge",
			"secrets_dir", a.Source.Dir)
		return nil
	}
	if len(frags) == 0 {
		log.Debug("no secret fragments found", "secrets_dir", a.Source.Dir)
		return nil
	}

	merged := Append(existing, frags)

	f, err := os.OpenFile(a.ConfigFile, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return errors.ArtifactError("Opening target config for append", a.ConfigFile,
			"Failed to open configuration for writing", err)
	}
	defer f.Close()

	if _, err := f.Write(merged[len(existing):]); err != nil {
		return errors.ArtifactError("Appending secret fragments", a.ConfigFile,
			"Failed to append secret fragments", err)
	}
	if err := f.Close(); err != nil {
		return errors.ArtifactError("Appending secret fragments", a.ConfigFile,
			"Failed to flush appended configuration", err)
	}

	log.Info("merged secret fragments into config",
		"config_file", a.ConfigFile, "fragments", len(frags))
	return nil
}
