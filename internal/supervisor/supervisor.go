// Package supervisor keeps exactly one instance of the compiled application
// running across rebuilds: it starts it after the first successful build,
// replaces it after every later one, and kills it when the CLI exits.
package supervisor

import (
	"context"
	stderrors "errors"
	"os/exec"
	"sync"

	clierrors "github.com/tgairbot/cli/internal/errors"
	"github.com/tgairbot/cli/internal/logging"
)

// State is the lifecycle state of the supervised child.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateRestarting
)

// String returns the string representation of the State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateRestarting:
		return "restarting"
	default:
		return "unknown"
	}
}

// CommandFactory builds the command for a fresh child.
type CommandFactory func() (*exec.Cmd, error)

type child struct {
	cmd *exec.Cmd
	// detached children no longer report their exit to the supervisor.
	detached bool
	done     chan struct{}
}

// Supervisor owns the child process. All methods are safe for concurrent
// use.
type Supervisor struct {
	newCommand CommandFactory
	logger     logging.Logger

	mu       sync.Mutex
	state    State
	current  *child
	exitCode int
	spawns   int
	closed   bool

	errs         chan error
	shutdownOnce sync.Once
}

// New creates a supervisor. When ctx is done the current child is killed,
// exactly once, no matter how many restarts happened.
func New(ctx context.Context, newCommand CommandFactory, logger logging.Logger) *Supervisor {
	s := &Supervisor{
		newCommand: newCommand,
		logger:     logger.WithComponent("supervisor"),
		errs:       make(chan error, 1),
	}

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return s
}

// Errors delivers spawn failures. Each is fatal for the invocation.
func (s *Supervisor) Errors() <-chan error {
	return s.errs
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ExitCode returns the exit code of the last child that exited on its own.
func (s *Supervisor) ExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode
}

// Spawns returns how many children have been started.
func (s *Supervisor) Spawns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawns
}

// RequestRestart starts the child when none is running and replaces it
// otherwise. The replacement starts only after the old child has exited.
// Requests arriving while a replacement is pending collapse into it.
func (s *Supervisor) RequestRestart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	switch s.state {
	case StateIdle:
		s.startLocked()

	case StateRunning:
		old := s.current
		old.detached = true
		s.state = StateRestarting

		s.logger.Debug(context.Background(), "Restarting application", "pid", old.cmd.Process.Pid)

		if err := terminate(old.cmd); err != nil {
			s.logger.Warn(context.Background(), err, "Cannot signal application", "pid", old.cmd.Process.Pid)
		}

		go func() {
			<-old.done

			s.mu.Lock()
			defer s.mu.Unlock()
			if s.closed {
				s.state = StateIdle
				return
			}
			s.startLocked()
		}()

	case StateRestarting:
		s.logger.Debug(context.Background(), "Restart already pending")
	}
}

// startLocked spawns a child. The caller holds s.mu.
func (s *Supervisor) startLocked() {
	cmd, err := s.newCommand()
	if err == nil {
		err = cmd.Start()
	}
	if err != nil {
		s.state = StateIdle
		s.current = nil
		s.report(clierrors.NewProcessError(clierrors.ErrCodeSpawnFailed,
			"cannot start application", err))
		return
	}

	c := &child{cmd: cmd, done: make(chan struct{})}
	s.current = c
	s.state = StateRunning
	s.spawns++

	s.logger.Debug(context.Background(), "Application started", "pid", cmd.Process.Pid)

	go s.wait(c)
}

func (s *Supervisor) wait(c *child) {
	err := c.cmd.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == c {
		s.current = nil
		switch {
		case !c.detached:
			s.state = StateIdle
			s.exitCode = exitCode(err)
			s.logger.Debug(context.Background(), "Application exited", "code", s.exitCode)
		case s.closed:
			s.state = StateIdle
		}
	}

	close(c.done)
}

func (s *Supervisor) report(err error) {
	select {
	case s.errs <- err:
	default:
		s.logger.Error(context.Background(), err, "Dropped spawn error")
	}
}

// Shutdown kills the current child and waits for it to exit. Later
// restart requests are ignored. It is safe to call more than once.
func (s *Supervisor) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		c := s.current
		if c != nil {
			c.detached = true
		}
		s.mu.Unlock()

		if c == nil {
			return
		}

		if err := kill(c.cmd); err != nil {
			s.logger.Warn(context.Background(), err, "Cannot kill application", "pid", c.cmd.Process.Pid)
		}
		<-c.done
	})
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		// Killed by a signal.
		return 1
	}
	return 1
}

// ExitError converts the mirrored child exit code into an error for the
// command layer; it is nil for a zero code.
func (s *Supervisor) ExitError() error {
	code := s.ExitCode()
	if code == 0 {
		return nil
	}
	return &clierrors.ExitError{Code: code}
}

// Wait blocks until the current child exits or ctx is done. It returns
// immediately when no child is running.
func (s *Supervisor) Wait(ctx context.Context) {
	s.mu.Lock()
	c := s.current
	s.mu.Unlock()

	if c == nil {
		return
	}

	select {
	case <-c.done:
	case <-ctx.Done():
	}
}
