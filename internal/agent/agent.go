// Package agent performs filesystem work on behalf of the sandboxed UI.
package agent

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/fpt/folio/internal/infra"
	"github.com/fpt/folio/internal/picker"
	"github.com/fpt/folio/internal/repository"
	"github.com/fpt/folio/pkg/bridge"
	"github.com/fpt/folio/pkg/filetree"
	pkgLogger "github.com/fpt/folio/pkg/logger"
)

var logger = pkgLogger.NewComponentLogger("agent")

// ErrClosed is returned by operations started after Close.
var ErrClosed = errors.New("agent is shut down")

// Options configures an Agent. Zero values fall back to the OS filesystem,
// a picker that always cancels, and root collation.
type Options struct {
	Filesystem repository.FilesystemRepository
	Picker     picker.Picker
	Access     repository.AccessConfig
	MaxFanOut  int
	Collation  string
}

// Agent owns every filesystem operation the bridge exposes. It is created
// once at startup and handed to the transport.
type Agent struct {
	fs      repository.FilesystemRepository
	picker  picker.Picker
	builder *filetree.Builder
	access  repository.AccessConfig
	roots   roots

	// mu is held shared by every running operation and exclusively by Close.
	mu     sync.RWMutex
	closed bool
	stop   context.Context
	halt   context.CancelFunc
}

// New creates an Agent.
func New(opts Options) (*Agent, error) {
	order, err := filetree.ParseOrder(opts.Collation)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid collation %q", opts.Collation)
	}
	fsys := opts.Filesystem
	if fsys == nil {
		fsys = infra.NewOSFilesystemRepository()
	}
	pick := opts.Picker
	if pick == nil {
		pick = picker.Fixed{}
	}

	a := &Agent{
		fs:      fsys,
		picker:  pick,
		builder: filetree.NewBuilder(fsys, order, opts.MaxFanOut),
		access:  opts.Access,
	}
	a.stop, a.halt = context.WithCancel(context.Background())
	logger.DebugWithIntention(pkgLogger.IntentionConfig, "Agent ready",
		"collation", order.Tag().String(), "restrict_to_roots", opts.Access.RestrictToRoots)
	return a, nil
}

// Close stops accepting operations, cancels running ones and waits for
// them to return.
func (a *Agent) Close() error {
	a.halt()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	logger.InfoWithIntention(pkgLogger.IntentionStatus, "Agent closed")
	return nil
}

// Roots lists the folders opened or listed so far, oldest first.
func (a *Agent) Roots() []string {
	return a.roots.list()
}

// begin registers a running operation. The returned context is also
// cancelled by Close; done must be called when the operation finishes.
func (a *Agent) begin(ctx context.Context) (context.Context, func(), error) {
	a.mu.RLock()
	if a.closed {
		a.mu.RUnlock()
		return nil, nil, &bridge.Error{Kind: bridge.KindIO, Err: ErrClosed}
	}
	ctx, cancel := context.WithCancel(ctx)
	unhook := context.AfterFunc(a.stop, cancel)
	return ctx, func() {
		unhook()
		cancel()
		a.mu.RUnlock()
	}, nil
}

// fail classifies err and logs it with the channel and path.
func (a *Agent) fail(channel bridge.Channel, path string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.DebugWithIntention(pkgLogger.IntentionCancel, "Operation abandoned",
			"channel", channel, "path", path, "error", err)
		return err
	}
	be := bridge.FromOS(string(channel), err)
	switch be.Kind {
	case bridge.KindIO, bridge.KindPicker:
		logger.ErrorWithIntention(pkgLogger.IntentionError, "Operation failed",
			"channel", channel, "path", path, "kind", be.Kind, "error", be)
	default:
		logger.WarnWithIntention(pkgLogger.IntentionWarning, "Operation refused",
			"channel", channel, "path", path, "kind", be.Kind, "error", be)
	}
	return be
}
