//go:build windows

package supervisor

import (
	"os/exec"
	"strconv"
)

// terminate stops the child and its descendants.
func terminate(cmd *exec.Cmd) error {
	return kill(cmd)
}

func kill(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	taskkill := exec.Command("taskkill", "/pid", strconv.Itoa(cmd.Process.Pid), "/T", "/F")
	if err := taskkill.Run(); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}

func shellCommand(line string) *exec.Cmd {
	return exec.Command("cmd", "/C", line)
}

func quoteArg(arg string) string {
	return strconv.Quote(arg)
}
