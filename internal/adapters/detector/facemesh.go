package detector

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/okian/heist/internal/domain/landmark"
	"github.com/okian/heist/pkg/logger"
)

const (
	defaultIdleTimeout = 30 * time.Second
	defaultStopGrace   = 2 * time.Second
	maxResponseBytes   = 1 << 20
)

// Option applies a configuration option to the FaceMeshSource.
type Option func(*FaceMeshSource)

// WithIdleTimeout sets how long the helper process may sit unused before
// it is stopped. It is restarted on the next Detect.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *FaceMeshSource) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

// WithStopGrace sets how long a stopping helper may take to exit after its
// stdin is closed before it is killed.
func WithStopGrace(d time.Duration) Option {
	return func(s *FaceMeshSource) {
		if d > 0 {
			s.stopGrace = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *FaceMeshSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStderr redirects the helper's stderr. Defaults to os.Stderr.
func WithStderr(w io.Writer) Option {
	return func(s *FaceMeshSource) {
		if w != nil {
			s.stderr = w
		}
	}
}

// FaceMeshSource runs a face-mesh helper process and talks to it over
// stdin/stdout. Each frame is written as a 4-byte big-endian length
// followed by the encoded image; the helper answers with one JSON line.
// The process is started on first use and stopped after idleTimeout.
type FaceMeshSource struct {
	command     []string
	idleTimeout time.Duration
	stopGrace   time.Duration
	stderr      io.Writer
	logger      logger.Logger

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	started   bool
	closed    bool
	idleTimer *time.Timer
	idleGen   uint64
}

// NewFaceMeshSource creates a source for command. The process is not
// started until the first Detect.
func NewFaceMeshSource(command []string, opts ...Option) (*FaceMeshSource, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, ErrNoCommand
	}
	s := &FaceMeshSource{
		command:     append([]string(nil), command...),
		idleTimeout: defaultIdleTimeout,
		stopGrace:   defaultStopGrace,
		stderr:      os.Stderr,
		logger:      logger.Get().Named("facemesh"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type reply struct {
	line []byte
	err  error
}

// Detect sends image to the helper and returns the first face found. If
// ctx ends first the helper is killed so the next call starts clean.
func (s *FaceMeshSource) Detect(ctx context.Context, image []byte) (landmark.Set, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if uint64(len(image)) > math.MaxUint32 {
		return nil, ErrImageTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	if err := s.ensureStarted(ctx); err != nil {
		return nil, err
	}

	done := make(chan reply, 1)
	go roundTrip(s.stdin, s.stdout, image, done)

	select {
	case <-ctx.Done():
		s.kill(ctx)
		<-done
		_ = s.shutdown()
		return nil, fmt.Errorf("detect: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			// The stream is out of sync after a failed exchange.
			_ = s.shutdown()
			return nil, r.err
		}
		s.resetIdleTimer()
		return parseResponse(r.line)
	}
}

func roundTrip(w io.Writer, r *bufio.Reader, image []byte, done chan<- reply) {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(image))) //nolint:gosec // length checked by caller
	if _, err := w.Write(header[:]); err != nil {
		done <- reply{err: fmt.Errorf("write length: %w", err)}
		return
	}
	if _, err := w.Write(image); err != nil {
		done <- reply{err: fmt.Errorf("write image: %w", err)}
		return
	}
	line, err := readLine(r)
	if err != nil {
		done <- reply{err: fmt.Errorf("read response: %w", err)}
		return
	}
	done <- reply{line: line}
}

func readLine(r *bufio.Reader) ([]byte, error) {
	var out []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		if len(out) > maxResponseBytes {
			return nil, ErrBadResponse
		}
		if !isPrefix {
			return out, nil
		}
	}
}

// Close stops the helper process. Later Detect calls fail with ErrClosed.
func (s *FaceMeshSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.shutdown()
}

// Running reports whether the helper process is up.
func (s *FaceMeshSource) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *FaceMeshSource) ensureStarted(ctx context.Context) error {
	if s.started {
		return nil
	}

	cmd := exec.Command(s.command[0], s.command[1:]...) //nolint:gosec // command comes from operator config
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = s.stderr
	// Bounds Wait when a grandchild keeps the output pipes open.
	cmd.WaitDelay = s.stopGrace

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start face mesh helper: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.started = true
	s.logger.Info(ctx, "face mesh helper started",
		logger.String("command", s.command[0]),
		logger.Int("pid", cmd.Process.Pid),
	)
	return nil
}

func (s *FaceMeshSource) kill(ctx context.Context) {
	if s.cmd != nil && s.cmd.Process != nil {
		if err := s.cmd.Process.Kill(); err != nil {
			s.logger.Warn(ctx, "kill face mesh helper", logger.Error(err))
		}
	}
}

// shutdown must be called with s.mu held.
func (s *FaceMeshSource) shutdown() error {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
	if !s.started {
		return nil
	}

	if s.stdin != nil {
		_ = s.stdin.Close()
	}
	err := s.wait()

	s.started = false
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil
	s.logger.Debug(context.Background(), "face mesh helper stopped")

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fmt.Errorf("wait face mesh helper: %w", err)
	}
	return nil
}

// wait reaps the helper, killing it when it outlives stopGrace after EOF.
func (s *FaceMeshSource) wait() error {
	cmd := s.cmd
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	timer := time.NewTimer(s.stopGrace)
	defer timer.Stop()

	select {
	case err := <-exited:
		return err
	case <-timer.C:
		s.logger.Warn(context.Background(), "face mesh helper ignored EOF; killing",
			logger.Int("pid", cmd.Process.Pid),
			logger.String("grace", s.stopGrace.String()),
		)
		s.kill(context.Background())
		return <-exited
	}
}

func (s *FaceMeshSource) resetIdleTimer() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleGen++
	gen := s.idleGen
	s.idleTimer = time.AfterFunc(s.idleTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A newer Detect re-armed the timer after this one fired.
		if gen != s.idleGen {
			return
		}
		_ = s.shutdown()
	})
}
