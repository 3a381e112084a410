package bridge

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromOSClassifies(t *testing.T) {
	dir := t.TempDir()

	_, err := os.Stat(filepath.Join(dir, "missing"))
	assert.Equal(t, KindNotFound, FromOS("stat", err).Kind)

	err = os.Mkdir(dir, 0o755)
	assert.Equal(t, KindCollision, FromOS("mkdir", err).Kind)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = os.ReadDir(filepath.Join(file, "child"))
	assert.Equal(t, KindInvalidTarget, FromOS("readdir", err).Kind)

	perm := &fs.PathError{Op: "open", Path: "/root/x", Err: fs.ErrPermission}
	assert.Equal(t, KindPermission, FromOS("open", perm).Kind)

	other := FromOS("write", errors.New("disk full"))
	assert.Equal(t, KindIO, other.Kind)
	assert.Contains(t, other.Error(), "write: disk full")
}

func TestFromOSKeepsBridgeErrors(t *testing.T) {
	orig := Collision("exists")
	assert.Same(t, orig, FromOS("rename", orig))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("gone")))
	assert.Equal(t, KindIO, KindOf(errors.New("plain")))
	assert.Equal(t, KindPermission, KindOf(connect.NewError(connect.CodePermissionDenied, errors.New("no"))))
}

func TestConnectErrorRoundTrip(t *testing.T) {
	for kind := range kindCodes {
		t.Run(string(kind), func(t *testing.T) {
			ce := ConnectError(&Error{Kind: kind, Msg: "boom"})
			assert.Equal(t, kind.Code(), ce.Code())
			assert.Equal(t, string(kind), ce.Meta().Get(ErrorKindHeader))

			back := FromConnectError(ce)
			var be *Error
			require.ErrorAs(t, back, &be)
			assert.Equal(t, kind, be.Kind)
			assert.Equal(t, "boom", be.Msg)
		})
	}
}

func TestFromConnectErrorWithoutHeader(t *testing.T) {
	err := FromConnectError(connect.NewError(connect.CodeAlreadyExists, errors.New("dup")))
	assert.Equal(t, KindCollision, KindOf(err))

	err = FromConnectError(connect.NewError(connect.CodeUnknown, errors.New("?")))
	assert.Equal(t, KindIO, KindOf(err))

	err = FromConnectError(connect.NewError(connect.CodeCanceled, errors.New("bye")))
	assert.ErrorIs(t, err, context.Canceled)

	plain := errors.New("dial failed")
	assert.Same(t, plain, FromConnectError(plain))
}

func TestConnectErrorContext(t *testing.T) {
	assert.Equal(t, connect.CodeCanceled, ConnectError(context.Canceled).Code())
	assert.Equal(t, connect.CodeDeadlineExceeded, ConnectError(context.DeadlineExceeded).Code())
	assert.Nil(t, ConnectError(nil))
}
