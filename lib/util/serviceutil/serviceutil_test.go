package serviceutil

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFatalExits(t *testing.T) {
	if os.Getenv("SERVICEUTIL_FATAL") == "1" {
		Fatal("scrape failed", errors.New("can not open https://sslbl.abuse.ch/"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestFatalExits$")
	cmd.Env = append(os.Environ(), "SERVICEUTIL_FATAL=1")
	output, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.ExitCode())
	require.Contains(t, string(output), "scrape failed")
	require.Contains(t, string(output), "can not open https://sslbl.abuse.ch/")
}
