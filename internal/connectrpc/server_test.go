package connectrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpt/folio/internal/agent"
	"github.com/fpt/folio/internal/picker"
	"github.com/fpt/folio/pkg/bridge"
	"github.com/fpt/folio/pkg/client"
	"github.com/fpt/folio/pkg/filetree"
)

func newTestServer(t *testing.T, opts agent.Options) (*httptest.Server, *client.Client) {
	t.Helper()
	a, err := agent.New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv := httptest.NewServer(NewHandler(a, ServerOptions{MetricsPath: "/metrics"}))
	t.Cleanup(srv.Close)
	return srv, client.New(srv.URL, client.WithHTTPClient(srv.Client()))
}

func postJSON(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestBridgeRoundTrip(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("n"), 0o644))

	_, c := newTestServer(t, agent.Options{Picker: picker.Fixed{Path: root}})
	ctx := context.Background()

	opened, err := c.OpenFolder(ctx)
	require.NoError(t, err)
	require.NotNil(t, opened)
	assert.Equal(t, root, *opened)

	nodes, err := c.ReadFolder(ctx, root)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "src", nodes[0].Name)
	assert.Equal(t, "notes.txt", nodes[1].Name)

	created, err := c.CreateFile(ctx, root, "draft.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "draft.md"), created.Path)

	_, err = c.WriteFile(ctx, created.Path, "hello")
	require.NoError(t, err)
	read, err := c.ReadFile(ctx, created.Path)
	require.NoError(t, err)
	assert.Equal(t, bridge.ReadFileResult{Success: true, Content: "hello"}, read)

	folder, err := c.CreateFolder(ctx, root, "chapters")
	require.NoError(t, err)
	again, err := c.CreateFolder(ctx, root, "chapters")
	require.NoError(t, err)
	assert.Equal(t, folder, again)

	renamed, err := c.Rename(ctx, created.Path, "final.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "final.md"), renamed.Path)

	_, err = c.Rename(ctx, renamed.Path, "notes.txt")
	assert.Equal(t, bridge.KindCollision, bridge.KindOf(err))
	var be *bridge.Error
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Msg, "already exists")

	deleted, err := c.Delete(ctx, folder.Path)
	require.NoError(t, err)
	assert.True(t, deleted.Success)

	_, err = c.ReadFolder(ctx, folder.Path)
	assert.Equal(t, bridge.KindNotFound, bridge.KindOf(err))
}

func TestBridgeOrderingThroughWire(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"zeta", "Alpha", "beta/inner"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	for _, f := range []string{"b.md", "A.md", "a.md", "beta/z.txt", "beta/y.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, f), nil, 0o644))
	}

	_, c := newTestServer(t, agent.Options{})
	nodes, err := c.ReadFolder(context.Background(), root)
	require.NoError(t, err)

	order, err := filetree.ParseOrder("")
	require.NoError(t, err)
	assert.True(t, order.IsSorted(nodes))

	var names []string
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"Alpha", "beta", "zeta", "a.md", "A.md", "b.md"}, names)
}

func TestBridgePositionalWireFormat(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), nil, 0o644))
	srv, _ := newTestServer(t, agent.Options{})

	body, _ := json.Marshal([]string{filepath.Join(root, "a.md"), "b.md"})
	resp, data := postJSON(t, srv.URL+bridge.ChannelRename.Procedure(), string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.JSONEq(t, `{"success":true,"path":"`+filepath.Join(root, "b.md")+`"}`, string(data))

	resp, data = postJSON(t, srv.URL+bridge.ChannelReadFolder.Procedure(), `["`+root+`"]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"id":"`+filepath.Join(root, "b.md")+`","name":"b.md","path":"`+filepath.Join(root, "b.md")+`","type":"file","extension":"md"}]`, string(data))

	resp, data = postJSON(t, srv.URL+bridge.ChannelOpenFolder.Procedure(), `[]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", string(data))
}

func TestBridgeArityErrors(t *testing.T) {
	srv, _ := newTestServer(t, agent.Options{})

	for _, body := range []string{`["/only-one"]`, `{"oldPath":"/x"}`, `["/x", 1]`} {
		resp, data := postJSON(t, srv.URL+bridge.ChannelRename.Procedure(), body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

		var wireErr struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(data, &wireErr))
		assert.Equal(t, "invalid_argument", wireErr.Code)
	}
}

func TestBridgeErrorKindHeader(t *testing.T) {
	srv, _ := newTestServer(t, agent.Options{})
	resp, _ := postJSON(t, srv.URL+bridge.ChannelDelete.Procedure(), `["/definitely/not/here"]`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, string(bridge.KindNotFound), resp.Header.Get(bridge.ErrorKindHeader))
	_, err := uuid.Parse(resp.Header.Get(bridge.RequestIDHeader))
	assert.NoError(t, err)
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv, _ := newTestServer(t, agent.Options{})
	id := uuid.NewString()

	req, err := http.NewRequest(http.MethodPost, srv.URL+bridge.ChannelOpenFolder.Procedure(), bytes.NewBufferString(`[]`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(bridge.RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(bridge.RequestIDHeader))

	req, _ = http.NewRequest(http.MethodPost, srv.URL+bridge.ChannelOpenFolder.Procedure(), bytes.NewBufferString(`[]`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(bridge.RequestIDHeader, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(bridge.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, c := newTestServer(t, agent.Options{})
	_, _ = c.OpenFolder(context.Background())

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(data), `folio_bridge_requests_total{channel="open-folder",outcome="ok"}`)
}

// panicPicker stands in for a broken collaborator.
type panicPicker struct{}

func (panicPicker) PickFolder(context.Context) (string, bool, error) {
	panic("picker exploded")
}

func TestPanicBecomesIOFailure(t *testing.T) {
	_, c := newTestServer(t, agent.Options{Picker: panicPicker{}})
	_, err := c.OpenFolder(context.Background())
	assert.Equal(t, bridge.KindIO, bridge.KindOf(err))
}

func TestServeOverH2C(t *testing.T) {
	root := t.TempDir()
	a, err := agent.New(agent.Options{})
	require.NoError(t, err)
	defer a.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, a, ServerOptions{}) }()

	c := client.New("http://"+ln.Addr().String(), client.WithH2C())
	res, err := c.CreateFolder(context.Background(), root, "via-h2c")
	require.NoError(t, err)
	assert.DirExists(t, res.Path)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestStartServerBadAddress(t *testing.T) {
	a, err := agent.New(agent.Options{})
	require.NoError(t, err)
	defer a.Close()

	err = StartServer(context.Background(), a, ServerOptions{Addr: "256.0.0.1:bad"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, http.ErrServerClosed))
}
