package bridge

import (
	"encoding/json"

	"github.com/fpt/folio/pkg/filetree"
)

// Requests travel as JSON arrays of positional arguments, in the order the
// catalogue lists them. The struct fields exist for Go callers only.

type OpenFolderRequest struct{}

func (OpenFolderRequest) MarshalJSON() ([]byte, error) { return marshalArgs() }
func (r *OpenFolderRequest) UnmarshalJSON(data []byte) error {
	return unmarshalArgs(data, ChannelOpenFolder)
}

type ReadFolderRequest struct {
	FolderPath string `arg:"folderPath" validate:"abspath"`
}

func (r ReadFolderRequest) MarshalJSON() ([]byte, error) { return marshalArgs(r.FolderPath) }
func (r *ReadFolderRequest) UnmarshalJSON(data []byte) error {
	return unmarshalArgs(data, ChannelReadFolder, &r.FolderPath)
}

type ReadFileRequest struct {
	FilePath string `arg:"filePath" validate:"abspath"`
}

func (r ReadFileRequest) MarshalJSON() ([]byte, error) { return marshalArgs(r.FilePath) }
func (r *ReadFileRequest) UnmarshalJSON(data []byte) error {
	return unmarshalArgs(data, ChannelReadFile, &r.FilePath)
}

type WriteFileRequest struct {
	FilePath string `arg:"filePath" validate:"abspath"`
	Content  string `arg:"content"`
}

func (r WriteFileRequest) MarshalJSON() ([]byte, error) { return marshalArgs(r.FilePath, r.Content) }
func (r *WriteFileRequest) UnmarshalJSON(data []byte) error {
	return unmarshalArgs(data, ChannelWriteFile, &r.FilePath, &r.Content)
}

type CreateFileRequest struct {
	ParentPath string `arg:"parentPath" validate:"abspath"`
	FileName   string `arg:"fileName" validate:"basename"`
}

func (r CreateFileRequest) MarshalJSON() ([]byte, error) {
	return marshalArgs(r.ParentPath, r.FileName)
}
func (r *CreateFileRequest) UnmarshalJSON(data []byte) error {
	return unmarshalArgs(data, ChannelCreateFile, &r.ParentPath, &r.FileName)
}

type CreateFolderRequest struct {
	ParentPath string `arg:"parentPath" validate:"abspath"`
	FolderName string `arg:"folderName" validate:"basename"`
}

func (r CreateFolderRequest) MarshalJSON() ([]byte, error) {
	return marshalArgs(r.ParentPath, r.FolderName)
}
func (r *CreateFolderRequest) UnmarshalJSON(data []byte) error {
	return unmarshalArgs(data, ChannelCreateFolder, &r.ParentPath, &r.FolderName)
}

type RenameRequest struct {
	OldPath string `arg:"oldPath" validate:"abspath"`
	NewName string `arg:"newName" validate:"basename"`
}

func (r RenameRequest) MarshalJSON() ([]byte, error) { return marshalArgs(r.OldPath, r.NewName) }
func (r *RenameRequest) UnmarshalJSON(data []byte) error {
	return unmarshalArgs(data, ChannelRename, &r.OldPath, &r.NewName)
}

type DeleteRequest struct {
	Path string `arg:"path" validate:"abspath"`
}

func (r DeleteRequest) MarshalJSON() ([]byte, error) { return marshalArgs(r.Path) }
func (r *DeleteRequest) UnmarshalJSON(data []byte) error {
	return unmarshalArgs(data, ChannelDelete, &r.Path)
}

func marshalArgs(args ...any) ([]byte, error) {
	if args == nil {
		args = []any{}
	}
	return json.Marshal(args)
}

func unmarshalArgs(data []byte, channel Channel, dst ...any) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return InvalidTarget("%s: arguments must be a JSON array", channel)
	}
	if len(raw) != len(dst) {
		return InvalidTarget("%s expects %d argument(s), got %d", channel, len(dst), len(raw))
	}
	for i := range raw {
		if err := json.Unmarshal(raw[i], dst[i]); err != nil {
			return InvalidTarget("%s: argument %d must be a string", channel, i+1)
		}
	}
	return nil
}

// OpenFolderResult is the chosen folder, or nil when the user cancelled.
// It travels as a bare string or null.
type OpenFolderResult struct {
	Path *string
}

func (r OpenFolderResult) MarshalJSON() ([]byte, error) { return json.Marshal(r.Path) }
func (r *OpenFolderResult) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.Path)
}

// ReadFolderResult is the ordered listing of a folder. It travels as a bare array.
type ReadFolderResult struct {
	Nodes []*filetree.Node
}

func (r ReadFolderResult) MarshalJSON() ([]byte, error) {
	if r.Nodes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Nodes)
}
func (r *ReadFolderResult) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.Nodes)
}

// Result is a bare success flag.
type Result struct {
	Success bool `json:"success"`
}

type (
	WriteFileResult = Result
	DeleteResult    = Result
)

// ReadFileResult carries the file's text. Content is only sent on success.
type ReadFileResult struct {
	Success bool   `json:"success"`
	Content string `json:"content,omitempty"`
}

func (r ReadFileResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(Result{})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Content string `json:"content"`
	}{true, r.Content})
}

// PathResult is the outcome of create-file, create-folder and rename.
// Path is only sent on success.
type PathResult struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
}

func (r PathResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(Result{})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Path    string `json:"path"`
	}{true, r.Path})
}
