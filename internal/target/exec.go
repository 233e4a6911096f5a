package target

import (
	"fmt"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/osp-containers/materializer/internal/errors"
)

// Exec replaces the current process image with argv. On success it never
// returns: the target inherits the process identity, standard streams, and
// direct signal delivery, and its exit status becomes the container's.
func Exec(argv []string, env []string) error {
	if len(argv) == 0 {
		return errors.ExecError("", fmt.Errorf("no target command given"))
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return errors.ExecError(argv[0], err)
	}

	if err := unix.Exec(path, argv, env); err != nil {
		return errors.ExecError(argv[0], err)
	}

	// Unreachable: Exec does not return on success.
	return nil
}
