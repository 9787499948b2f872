//go:build !windows

package supervisor

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// terminate asks the child and its descendants to stop.
func terminate(cmd *exec.Cmd) error {
	return signalTree(cmd, unix.SIGTERM)
}

// kill stops the child and its descendants immediately.
func kill(cmd *exec.Cmd) error {
	return signalTree(cmd, unix.SIGKILL)
}

// signalTree signals the child and every process below it. The child stays
// in the CLI's process group so it can use the terminal, which rules out
// signalling a group.
func signalTree(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}

	root := cmd.Process.Pid
	// Collect the tree before signalling so that reparented orphans are
	// still found.
	pids := append([]int{root}, descendants(root)...)

	var errs []error
	for _, pid := range pids {
		if err := unix.Kill(pid, sig); err != nil && !errors.Is(err, unix.ESRCH) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// descendants lists every process below pid, parents first.
func descendants(pid int) []int {
	parents, err := procParents()
	if err != nil {
		parents, err = psParents()
	}
	if err != nil {
		return nil
	}

	children := make(map[int][]int)
	for child, parent := range parents {
		children[parent] = append(children[parent], child)
	}

	var out []int
	queue := []int{pid}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, child := range children[next] {
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// procParents maps pid to parent pid from /proc.
func procParents() (map[int]int, error) {
	stats, err := filepath.Glob("/proc/[0-9]*/stat")
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, os.ErrNotExist
	}

	parents := make(map[int]int, len(stats))
	for _, path := range stats {
		data, err := os.ReadFile(path)
		if err != nil {
			// Exited while listing.
			continue
		}
		if pid, ppid, ok := parseStat(string(data)); ok {
			parents[pid] = ppid
		}
	}
	return parents, nil
}

// parseStat reads pid and ppid from a /proc/<pid>/stat line. The command
// name is parenthesized and may itself contain spaces and parentheses.
func parseStat(line string) (pid, ppid int, ok bool) {
	open := strings.IndexByte(line, '(')
	closing := strings.LastIndexByte(line, ')')
	if open <= 0 || closing < open {
		return 0, 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(line[:open]))
	if err != nil {
		return 0, 0, false
	}

	// state ppid ...
	fields := strings.Fields(line[closing+1:])
	if len(fields) < 2 {
		return 0, 0, false
	}
	ppid, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, false
	}
	return pid, ppid, true
}

// psParents maps pid to parent pid using ps, for systems without /proc.
func psParents() (map[int]int, error) {
	out, err := exec.Command("ps", "-A", "-o", "pid=", "-o", "ppid=").Output()
	if err != nil {
		return nil, err
	}
	return parsePs(out), nil
}

func parsePs(out []byte) map[int]int {
	parents := make(map[int]int)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		pid, err1 := strconv.Atoi(fields[0])
		ppid, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			continue
		}
		parents[pid] = ppid
	}
	return parents
}

func shellCommand(line string) *exec.Cmd {
	return exec.Command("/bin/sh", "-c", line)
}

// quoteArg single-quotes arg for /bin/sh so it reaches the application
// verbatim.
func quoteArg(arg string) string {
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
