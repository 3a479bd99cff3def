// Package privilege escalates once with sudo and keeps the grant alive for
// the rest of the run.
package privilege

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/bootstrap/pkg/errors"
	"github.com/arthur-debert/bootstrap/pkg/executor"
	"github.com/arthur-debert/bootstrap/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultKeepAliveInterval is comfortably below sudo's default 5 minute
// timestamp timeout.
const DefaultKeepAliveInterval = 60 * time.Second

// EnsureNonRoot fails when the run was started as root. Phases install
// per-user toolchains under $HOME, so they must run as the target user.
func EnsureNonRoot(uid int) error {
	if uid == 0 {
		return errors.New(errors.ErrPrecondition, "bootstrap must not be run as root; run it as your user and it will ask for sudo").
			WithExitCode(errors.ExitRunningAsRoot)
	}
	return nil
}

// Manager acquires privilege sessions.
type Manager struct {
	runner executor.Runner
	logger zerolog.Logger
}

// NewManager creates a Manager that escalates through runner.
func NewManager(runner executor.Runner) *Manager {
	return &Manager{
		runner: runner,
		logger: logging.GetLogger("privilege"),
	}
}

// Acquire validates sudo credentials, prompting on the terminal if needed.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	m.logger.Info().Msg("Acquiring sudo privileges")
	if _, err := m.runner.Run(ctx, executor.Command{Name: "sudo", Args: []string{"-v"}, Interactive: true}); err != nil {
		return nil, errors.Wrap(err, errors.ErrPrivilege, "could not acquire sudo privileges").
			WithExitCode(errors.ExitPrivilege)
	}
	return &Session{runner: m.runner, logger: m.logger}, nil
}

// Session is an acquired grant. Its keep-alive is best effort: a failed
// renewal is logged and later privileged commands may prompt again.
type Session struct {
	runner executor.Runner
	logger zerolog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	renewals atomic.Int64
	failures atomic.Int64
}

// KeepAlive starts renewing the grant every interval until Stop is called or
// ctx is done. Calling it again replaces the previous loop.
func (s *Session) KeepAlive(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultKeepAliveInterval
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Debug().Dur("interval", interval).Msg("Starting sudo keep-alive")
	go s.loop(loopCtx, interval)
}

func (s *Session) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.renew(ctx)
		}
	}
}

func (s *Session) renew(ctx context.Context) {
	_, err := s.runner.Run(ctx, executor.Command{Name: "sudo", Args: []string{"-n", "true"}, Quiet: true})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.failures.Add(1)
		s.logger.Warn().Err(err).Msg("sudo keep-alive failed; later commands may prompt for a password")
		return
	}
	s.renewals.Add(1)
	s.logger.Trace().Msg("sudo grant renewed")
}

// Renewals returns how many keep-alive renewals succeeded.
func (s *Session) Renewals() int64 {
	return s.renewals.Load()
}

// Failures returns how many keep-alive renewals failed.
func (s *Session) Failures() int64 {
	return s.failures.Load()
}

// Stop cancels the keep-alive loop without waiting for it. Safe to call more
// than once and on a nil Session.
func (s *Session) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
