// Package bridge defines the catalogue of channels the UI process may call
// on the privileged agent, their positional wire messages, and the failure
// taxonomy carried back across the boundary.
package bridge

import "strings"

// ServiceName prefixes every procedure path.
const ServiceName = "folio.bridge.v1.Bridge"

// RequestIDHeader carries the id the agent assigned to a request. A client
// may supply its own.
const RequestIDHeader = "Folio-Request-Id"

// Channel names one operation in the catalogue.
type Channel string

const (
	ChannelOpenFolder   Channel = "open-folder"
	ChannelReadFolder   Channel = "read-folder"
	ChannelReadFile     Channel = "read-file"
	ChannelWriteFile    Channel = "write-file"
	ChannelCreateFile   Channel = "create-file"
	ChannelCreateFolder Channel = "create-folder"
	ChannelRename       Channel = "rename"
	ChannelDelete       Channel = "delete"
)

// Procedure returns the HTTP path the channel is served on.
func (c Channel) Procedure() string {
	return "/" + ServiceName + "/" + string(c)
}

// ChannelFromProcedure is the inverse of Channel.Procedure. It returns ""
// for paths outside the service.
func ChannelFromProcedure(procedure string) Channel {
	prefix := "/" + ServiceName + "/"
	if !strings.HasPrefix(procedure, prefix) {
		return ""
	}
	return Channel(strings.TrimPrefix(procedure, prefix))
}

// Mode says how a call settles. It is exported in the schema as x-mode.
type Mode string

// ModeInvoke calls settle exactly once with a value or a failure.
const ModeInvoke Mode = "invoke"

// Spec describes one row of the catalogue.
type Spec struct {
	Channel Channel
	Mode    Mode
	// Args are the positional argument names, in wire order.
	Args []string
	// Failure summarises when the channel fails.
	Failure string
}

// Catalogue lists every channel in a fixed order.
var Catalogue = []Spec{
	{ChannelOpenFolder, ModeInvoke, nil, "the folder picker could not be shown"},
	{ChannelReadFolder, ModeInvoke, []string{"folderPath"}, "the folder does not exist or cannot be read"},
	{ChannelReadFile, ModeInvoke, []string{"filePath"}, "the file does not exist or cannot be read"},
	{ChannelWriteFile, ModeInvoke, []string{"filePath", "content"}, "write permission denied or disk error"},
	{ChannelCreateFile, ModeInvoke, []string{"parentPath", "fileName"}, "the parent folder is missing or the OS rejects the name"},
	{ChannelCreateFolder, ModeInvoke, []string{"parentPath", "folderName"}, "the parent folder is missing or the OS rejects the name"},
	{ChannelRename, ModeInvoke, []string{"oldPath", "newName"}, "a sibling with the new name already exists"},
	{ChannelDelete, ModeInvoke, []string{"path"}, "the path does not exist"},
}

// Lookup finds the catalogue entry for a channel.
func Lookup(c Channel) (Spec, bool) {
	for _, s := range Catalogue {
		if s.Channel == c {
			return s, true
		}
	}
	return Spec{}, false
}
