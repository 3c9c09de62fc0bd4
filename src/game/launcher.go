package game

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"

	"terasology-launcher/src/install"
	"terasology-launcher/src/logger"
)

// DefaultConfirmTimeout is how long a started game has to report a finished
// engine initialization.
const DefaultConfirmTimeout = 30 * time.Second

// maxLineSize bounds a single line of game output.
const maxLineSize = 1024 * 1024

// startMatch is printed by the engine at INFO level once it is up.
var startMatch = regexp.MustCompile(`TerasologyEngine.+Initialization completed`)

var (
	ErrAlreadyRunning = errors.New("a game is already running")
	ErrConfirmTimeout = errors.New("the game did not confirm its start in time")
)

// StartError means the process could not be spawned at all.
type StartError struct {
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("the game could not be started: %v", e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// ExitedError means the process ended before it confirmed its start.
type ExitedError struct {
	ExitCode int
}

func (e *ExitedError) Error() string {
	return fmt.Sprintf("the game exited before it was up (exit code %d)", e.ExitCode)
}

type State int

const (
	NotStarted State = iota
	Starting
	ConfirmedRunning
	ExitedBeforeConfirmation
	StartFailed
	TimedOut
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Starting:
		return "starting"
	case ConfirmedRunning:
		return "running"
	case ExitedBeforeConfirmation:
		return "exited before confirmation"
	case StartFailed:
		return "start failed"
	case TimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the terminal result of a start attempt. Err is nil only for
// ConfirmedRunning.
type Outcome struct {
	State    State
	ExitCode int
	Err      error
}

// Run is one start attempt. The outcome is decided exactly once; the
// process may keep running long after that.
type Run struct {
	Command Command

	mu       sync.Mutex
	state    State
	outcome  Outcome
	resolved chan struct{}
	done     chan struct{}
	pid      int
	exitCode int
}

func newRun(cmd Command) *Run {
	return &Run{
		Command:  cmd,
		state:    NotStarted,
		resolved: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Run) Pid() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pid
}

// Wait blocks until the outcome is decided or ctx is done.
func (r *Run) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-r.resolved:
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.outcome, r.outcome.Err
	case <-ctx.Done():
		return Outcome{State: r.State()}, ctx.Err()
	}
}

// Done is closed once the process has exited and its output is drained.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// ExitCode is valid after Done is closed.
func (r *Run) ExitCode() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exitCode
}

func (r *Run) setStarting(pid int) {
	r.mu.Lock()
	r.state = Starting
	r.pid = pid
	r.mu.Unlock()
}

// resolve records o unless an outcome exists already.
func (r *Run) resolve(o Outcome) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.resolved:
		return false
	default:
	}
	r.state = o.State
	r.outcome = o
	close(r.resolved)
	return true
}

// Launcher starts one game at a time.
type Launcher struct {
	starter        Starter
	log            logger.Logger
	confirmTimeout time.Duration
	pidFile        string

	mu      sync.Mutex
	current *Run
}

type LauncherOption func(*Launcher)

func WithStarter(s Starter) LauncherOption {
	return func(l *Launcher) {
		l.starter = s
	}
}

func WithConfirmTimeout(d time.Duration) LauncherOption {
	return func(l *Launcher) {
		l.confirmTimeout = d
	}
}

// WithPidFile records the pid of started games in path so that other
// launcher processes can see them.
func WithPidFile(path string) LauncherOption {
	return func(l *Launcher) {
		l.pidFile = path
	}
}

func NewLauncher(log logger.Logger, opts ...LauncherOption) *Launcher {
	l := &Launcher{
		starter:        ExecStarter{},
		log:            log,
		confirmTimeout: DefaultConfirmTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Running reports whether a game started by this launcher, or by another
// launcher process sharing the pid file, is still alive.
func (l *Launcher) Running() bool {
	l.mu.Lock()
	run := l.current
	l.mu.Unlock()
	if run != nil {
		select {
		case <-run.done:
		default:
			return true
		}
	}
	if l.pidFile == "" {
		return false
	}
	_, running, err := CheckPidFile(l.pidFile)
	if err != nil {
		l.log.Warn("Pid file %s can not be checked: %v", l.pidFile, err)
	}
	return running
}

// Start builds the command for inst and spawns it. Errors returned here
// mean nothing was spawned; everything after the spawn is reported through
// the returned Run. Cancelling ctx kills the process.
func (l *Launcher) Start(ctx context.Context, inst install.Installation, s Settings) (*Run, error) {
	cmd, err := BuildCommand(inst, s)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil {
		select {
		case <-l.current.done:
		default:
			l.log.Warn("The game can not be started because another game is already running! pid %d", l.current.Pid())
			return nil, ErrAlreadyRunning
		}
	}
	if l.pidFile != "" {
		if pid, running, _ := CheckPidFile(l.pidFile); running {
			l.log.Warn("The game can not be started because another game is already running! pid %d", pid)
			return nil, ErrAlreadyRunning
		}
	}

	run := newRun(cmd)
	l.log.Debug("Starting game process with '%s' in '%s'", cmd, cmd.Dir)

	proc, err := l.starter.Start(cmd)
	if err != nil {
		l.log.Error("The game could not be started due to an error! Parameters '%s': %v", cmd, err)
		run.resolve(Outcome{State: StartFailed, ExitCode: -1, Err: &StartError{Err: err}})
		close(run.done)
		return run, nil
	}
	run.setStarting(proc.Pid())
	l.current = run

	if l.pidFile != "" {
		if err := WritePidFile(l.pidFile, proc.Pid()); err != nil {
			l.log.Warn("Pid file %s can not be written: %v", l.pidFile, err)
		}
	}

	go l.monitor(ctx, run, proc)
	return run, nil
}

func (l *Launcher) monitor(ctx context.Context, run *Run, proc Process) {
	defer close(run.done)

	output := make(chan string)
	go func() {
		defer close(output)
		out := proc.Output()
		sc := bufio.NewScanner(out)
		sc.Buffer(make([]byte, 64*1024), maxLineSize)
		for sc.Scan() {
			output <- sc.Text()
		}
		if err := sc.Err(); err != nil {
			l.log.Error("Could not read game output! %v", err)
			// Keep the pipe drained so the game never blocks on a write.
			if _, err := io.Copy(io.Discard, out); err != nil {
				l.log.Debug("Discarding game output failed: %v", err)
			}
		}
	}()
	var lines <-chan string = output

	timer := time.NewTimer(l.confirmTimeout)
	defer timer.Stop()
	timeout := timer.C
	cancelled := ctx.Done()

	for lines != nil {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			line = ansi.Strip(line)
			l.log.Trace("Game output: %s", line)
			if timeout != nil && startMatch.MatchString(line) {
				timeout = nil
				if run.resolve(Outcome{State: ConfirmedRunning}) {
					l.log.Info("The game is successfully launched.")
				}
			}
		case <-timeout:
			timeout = nil
			if run.resolve(Outcome{State: TimedOut, ExitCode: -1, Err: ErrConfirmTimeout}) {
				l.log.Warn("No start confirmation from the game within %s", l.confirmTimeout)
			}
		case <-cancelled:
			cancelled = nil
			l.log.Debug("Game start cancelled, killing pid %d", proc.Pid())
			if err := proc.Kill(); err != nil {
				l.log.Warn("The game process could not be killed: %v", err)
			}
		}
	}

	code, err := proc.Wait()
	if err != nil {
		l.log.Error("The game process could not be awaited: %v", err)
	}
	l.log.Debug("Game closed with the exit value '%d'.", code)

	run.mu.Lock()
	run.exitCode = code
	run.mu.Unlock()

	if run.resolve(Outcome{State: ExitedBeforeConfirmation, ExitCode: code, Err: &ExitedError{ExitCode: code}}) {
		l.log.Warn("The game was stopped early. It returns with the exit value '%d'.", code)
	}

	if l.pidFile != "" {
		if err := RemovePidFile(l.pidFile, proc.Pid()); err != nil {
			l.log.Debug("Pid file %s not removed: %v", l.pidFile, err)
		}
	}
}
