package client

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"

	"github.com/fpt/folio/pkg/bridge"
	"github.com/fpt/folio/pkg/filetree"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient connect.HTTPClient
}

// WithHTTPClient sends requests through c instead of http.DefaultClient.
func WithHTTPClient(c connect.HTTPClient) Option {
	return func(o *options) { o.httpClient = c }
}

// WithH2C talks cleartext HTTP/2 to the agent.
func WithH2C() Option {
	return WithHTTPClient(&http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	})
}

// Client is the UI side of the bridge: one typed method per channel. Every
// call is forwarded as is; nothing is cached, retried or reordered.
// Failures are returned as *bridge.Error.
type Client struct {
	openFolder   *connect.Client[bridge.OpenFolderRequest, bridge.OpenFolderResult]
	readFolder   *connect.Client[bridge.ReadFolderRequest, bridge.ReadFolderResult]
	readFile     *connect.Client[bridge.ReadFileRequest, bridge.ReadFileResult]
	writeFile    *connect.Client[bridge.WriteFileRequest, bridge.WriteFileResult]
	createFile   *connect.Client[bridge.CreateFileRequest, bridge.PathResult]
	createFolder *connect.Client[bridge.CreateFolderRequest, bridge.PathResult]
	rename       *connect.Client[bridge.RenameRequest, bridge.PathResult]
	delete       *connect.Client[bridge.DeleteRequest, bridge.DeleteResult]
}

// New creates a Client for the agent at baseURL, e.g. "http://127.0.0.1:7767".
func New(baseURL string, opts ...Option) *Client {
	o := options{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(&o)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	copts := []connect.ClientOption{connect.WithCodec(bridge.Codec{})}

	return &Client{
		openFolder:   newChannel[bridge.OpenFolderRequest, bridge.OpenFolderResult](o.httpClient, baseURL, bridge.ChannelOpenFolder, copts),
		readFolder:   newChannel[bridge.ReadFolderRequest, bridge.ReadFolderResult](o.httpClient, baseURL, bridge.ChannelReadFolder, copts),
		readFile:     newChannel[bridge.ReadFileRequest, bridge.ReadFileResult](o.httpClient, baseURL, bridge.ChannelReadFile, copts),
		writeFile:    newChannel[bridge.WriteFileRequest, bridge.WriteFileResult](o.httpClient, baseURL, bridge.ChannelWriteFile, copts),
		createFile:   newChannel[bridge.CreateFileRequest, bridge.PathResult](o.httpClient, baseURL, bridge.ChannelCreateFile, copts),
		createFolder: newChannel[bridge.CreateFolderRequest, bridge.PathResult](o.httpClient, baseURL, bridge.ChannelCreateFolder, copts),
		rename:       newChannel[bridge.RenameRequest, bridge.PathResult](o.httpClient, baseURL, bridge.ChannelRename, copts),
		delete:       newChannel[bridge.DeleteRequest, bridge.DeleteResult](o.httpClient, baseURL, bridge.ChannelDelete, copts),
	}
}

func newChannel[Req, Res any](hc connect.HTTPClient, baseURL string, ch bridge.Channel, opts []connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](hc, baseURL+ch.Procedure(), opts...)
}

func call[Req, Res any](ctx context.Context, c *connect.Client[Req, Res], req Req) (Res, error) {
	resp, err := c.CallUnary(ctx, connect.NewRequest(&req))
	if err != nil {
		var zero Res
		return zero, bridge.FromConnectError(err)
	}
	return *resp.Msg, nil
}

// OpenFolder shows the agent's folder picker. It returns nil when the user
// cancelled.
func (c *Client) OpenFolder(ctx context.Context) (*string, error) {
	res, err := call(ctx, c.openFolder, bridge.OpenFolderRequest{})
	return res.Path, err
}

// ReadFolder returns the ordered tree under path.
func (c *Client) ReadFolder(ctx context.Context, path string) ([]*filetree.Node, error) {
	res, err := call(ctx, c.readFolder, bridge.ReadFolderRequest{FolderPath: path})
	return res.Nodes, err
}

func (c *Client) ReadFile(ctx context.Context, path string) (bridge.ReadFileResult, error) {
	return call(ctx, c.readFile, bridge.ReadFileRequest{FilePath: path})
}

func (c *Client) WriteFile(ctx context.Context, path, content string) (bridge.WriteFileResult, error) {
	return call(ctx, c.writeFile, bridge.WriteFileRequest{FilePath: path, Content: content})
}

func (c *Client) CreateFile(ctx context.Context, parentPath, fileName string) (bridge.PathResult, error) {
	return call(ctx, c.createFile, bridge.CreateFileRequest{ParentPath: parentPath, FileName: fileName})
}

func (c *Client) CreateFolder(ctx context.Context, parentPath, folderName string) (bridge.PathResult, error) {
	return call(ctx, c.createFolder, bridge.CreateFolderRequest{ParentPath: parentPath, FolderName: folderName})
}

func (c *Client) Rename(ctx context.Context, oldPath, newName string) (bridge.PathResult, error) {
	return call(ctx, c.rename, bridge.RenameRequest{OldPath: oldPath, NewName: newName})
}

func (c *Client) Delete(ctx context.Context, path string) (bridge.DeleteResult, error) {
	return call(ctx, c.delete, bridge.DeleteRequest{Path: path})
}

// Outcome is the settled result of a call started with Go.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Go runs fn on its own goroutine. The returned channel delivers exactly one
// Outcome and is then closed.
func Go[T any](fn func() (T, error)) <-chan Outcome[T] {
	ch := make(chan Outcome[T], 1)
	go func() {
		defer close(ch)
		v, err := fn()
		ch <- Outcome[T]{Value: v, Err: err}
	}()
	return ch
}
