package validation

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/osp-containers/materializer/internal/errors"
)

// Validator checks resolved settings before any file is touched
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePath validates an explicitly configured artifact path. Empty is
// allowed (the path may be derived or the merge skipped).
func (v *Validator) ValidatePath(field, path string) error {
	if path == "" {
		return nil
	}

	if strings.Contains(path, "..") {
		return errors.ConfigValidationError(
			field,
			path,
			"Path contains path traversal attempt (..)",
			[]string{
				"Use a clean absolute path without '..'",
			},
		)
	}

	if !filepath.IsAbs(path) {
		return errors.ConfigValidationError(
			field,
			path,
			"Path must be absolute",
			[]string{
				"Configuration artifacts live at fixed locations in the image",
				"Example: /etc/nova/nova.conf",
			},
		)
	}

	return nil
}

// ValidateSecretsDir validates the mounted secrets directory path. The
// directory is allowed to be absent, but if present it must be a directory.
func (v *Validator) ValidateSecretsDir(field, dir string) error {
	if err := v.ValidatePath(field, dir); err != nil {
		return err
	}

	if dir == "" {
		return errors.ConfigValidationError(
			field,
			"<empty>",
			"Secrets directory cannot be empty",
			[]string{
				"Unset the variable to use the built-in default",
			},
		)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.ConfigValidationError(
			field,
			dir,
			"Cannot stat secrets directory",
			[]string{
				"Check the mount point permissions: ls -la " + filepath.Dir(dir),
			},
		)
	}

	if !info.IsDir() {
		return errors.ConfigValidationError(
			field,
			dir,
			"Secrets path exists but is not a directory",
			[]string{
				"Point the variable at the directory the orchestrator mounts secrets into",
			},
		)
	}

	return nil
}
