package agent

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/fpt/folio/internal/metrics"
	"github.com/fpt/folio/pkg/bridge"
	"github.com/fpt/folio/pkg/filetree"
	pkgLogger "github.com/fpt/folio/pkg/logger"
)

const (
	filePerm   fs.FileMode = 0o644
	folderPerm fs.FileMode = 0o755
)

// OpenFolder asks the picker for a folder. A cancelled picker yields a nil
// path; the chosen folder becomes a known root.
func (a *Agent) OpenFolder(ctx context.Context, req bridge.OpenFolderRequest) (bridge.OpenFolderResult, error) {
	ctx, done, err := a.begin(ctx)
	if err != nil {
		return bridge.OpenFolderResult{}, err
	}
	defer done()

	path, ok, err := a.picker.PickFolder(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return bridge.OpenFolderResult{}, a.fail(bridge.ChannelOpenFolder, "", ctx.Err())
		}
		return bridge.OpenFolderResult{}, a.fail(bridge.ChannelOpenFolder, "", bridge.PickerFailed(err))
	}
	if !ok {
		logger.InfoWithIntention(pkgLogger.IntentionCancel, "Folder picker cancelled")
		return bridge.OpenFolderResult{}, nil
	}
	if !bridge.IsAbsPath(path) {
		return bridge.OpenFolderResult{}, a.fail(bridge.ChannelOpenFolder, path,
			bridge.PickerFailed(errors.Errorf("picker returned %q, not an absolute path", path)))
	}

	a.roots.add(path)
	logger.InfoWithIntention(pkgLogger.IntentionSuccess, "Folder opened", "path", path)
	return bridge.OpenFolderResult{Path: &path}, nil
}

// ReadFolder lists a folder recursively. The whole build fails if any part
// of it cannot be read.
func (a *Agent) ReadFolder(ctx context.Context, req bridge.ReadFolderRequest) (bridge.ReadFolderResult, error) {
	if err := bridge.Validate(&req); err != nil {
		return bridge.ReadFolderResult{}, err
	}
	ctx, done, err := a.begin(ctx)
	if err != nil {
		return bridge.ReadFolderResult{}, err
	}
	defer done()

	nodes, err := a.builder.Build(ctx, req.FolderPath)
	if err != nil {
		if errors.Is(err, filetree.ErrNotDir) {
			err = bridge.InvalidTarget("%s is not a folder", req.FolderPath)
		}
		return bridge.ReadFolderResult{}, a.fail(bridge.ChannelReadFolder, req.FolderPath, err)
	}

	a.roots.add(req.FolderPath)
	count := filetree.Count(nodes)
	metrics.RecordTree(count)
	logger.DebugWithIntention(pkgLogger.IntentionTree, "Folder listed", "path", req.FolderPath, "nodes", count)
	return bridge.ReadFolderResult{Nodes: nodes}, nil
}

// ReadFile returns a file's content as text.
func (a *Agent) ReadFile(ctx context.Context, req bridge.ReadFileRequest) (bridge.ReadFileResult, error) {
	if err := bridge.Validate(&req); err != nil {
		return bridge.ReadFileResult{}, err
	}
	ctx, done, err := a.begin(ctx)
	if err != nil {
		return bridge.ReadFileResult{}, err
	}
	defer done()

	if err := a.checkRoot(req.FilePath); err != nil {
		return bridge.ReadFileResult{}, a.fail(bridge.ChannelReadFile, req.FilePath, err)
	}
	if err := a.checkBlacklist(req.FilePath); err != nil {
		return bridge.ReadFileResult{}, a.fail(bridge.ChannelReadFile, req.FilePath, err)
	}

	data, err := a.fs.ReadFile(ctx, req.FilePath)
	if err != nil {
		return bridge.ReadFileResult{}, a.fail(bridge.ChannelReadFile, req.FilePath, err)
	}
	// Content is returned as is; the detected type is only logged.
	logger.DebugWithIntention(pkgLogger.IntentionRequest, "File read",
		"path", req.FilePath, "bytes", len(data), "mime", mimetype.Detect(data).String())
	return bridge.ReadFileResult{Success: true, Content: string(data)}, nil
}

// WriteFile replaces a file's content atomically, creating the file if the
// parent folder exists.
func (a *Agent) WriteFile(ctx context.Context, req bridge.WriteFileRequest) (bridge.WriteFileResult, error) {
	if err := bridge.Validate(&req); err != nil {
		return bridge.WriteFileResult{}, err
	}
	ctx, done, err := a.begin(ctx)
	if err != nil {
		return bridge.WriteFileResult{}, err
	}
	defer done()

	if err := a.checkRoot(req.FilePath); err != nil {
		return bridge.WriteFileResult{}, a.fail(bridge.ChannelWriteFile, req.FilePath, err)
	}
	if err := a.checkBlacklist(req.FilePath); err != nil {
		return bridge.WriteFileResult{}, a.fail(bridge.ChannelWriteFile, req.FilePath, err)
	}

	if err := a.fs.WriteFileAtomic(ctx, req.FilePath, []byte(req.Content), filePerm); err != nil {
		return bridge.WriteFileResult{}, a.fail(bridge.ChannelWriteFile, req.FilePath, err)
	}
	metrics.RecordWrite(len(req.Content))
	logger.InfoWithIntention(pkgLogger.IntentionWrite, "File written", "path", req.FilePath, "bytes", len(req.Content))
	return bridge.WriteFileResult{Success: true}, nil
}

// CreateFile creates an empty file in an existing folder. An existing file
// of the same name is left untouched and reported as created.
func (a *Agent) CreateFile(ctx context.Context, req bridge.CreateFileRequest) (bridge.PathResult, error) {
	if err := bridge.Validate(&req); err != nil {
		return bridge.PathResult{}, err
	}
	ctx, done, err := a.begin(ctx)
	if err != nil {
		return bridge.PathResult{}, err
	}
	defer done()

	path := filepath.Join(req.ParentPath, req.FileName)
	if err := a.checkRoot(req.ParentPath); err != nil {
		return bridge.PathResult{}, a.fail(bridge.ChannelCreateFile, path, err)
	}
	if err := a.requireFolder(ctx, req.ParentPath); err != nil {
		return bridge.PathResult{}, a.fail(bridge.ChannelCreateFile, path, err)
	}

	if err := a.fs.CreateFile(ctx, path, filePerm); err != nil {
		return bridge.PathResult{}, a.fail(bridge.ChannelCreateFile, path, err)
	}
	logger.InfoWithIntention(pkgLogger.IntentionWrite, "File created", "path", path)
	return bridge.PathResult{Success: true, Path: path}, nil
}

// CreateFolder creates a folder in an existing folder. Creating a folder
// that already exists succeeds; a file in the way does not.
func (a *Agent) CreateFolder(ctx context.Context, req bridge.CreateFolderRequest) (bridge.PathResult, error) {
	if err := bridge.Validate(&req); err != nil {
		return bridge.PathResult{}, err
	}
	ctx, done, err := a.begin(ctx)
	if err != nil {
		return bridge.PathResult{}, err
	}
	defer done()

	path := filepath.Join(req.ParentPath, req.FolderName)
	if err := a.checkRoot(req.ParentPath); err != nil {
		return bridge.PathResult{}, a.fail(bridge.ChannelCreateFolder, path, err)
	}
	if err := a.requireFolder(ctx, req.ParentPath); err != nil {
		return bridge.PathResult{}, a.fail(bridge.ChannelCreateFolder, path, err)
	}
	if info, err := a.fs.Stat(ctx, path); err == nil && !info.IsDir() {
		return bridge.PathResult{}, a.fail(bridge.ChannelCreateFolder, path,
			bridge.Collision("a file named %q already exists in %s", req.FolderName, req.ParentPath))
	}

	if err := a.fs.MkdirAll(ctx, path, folderPerm); err != nil {
		return bridge.PathResult{}, a.fail(bridge.ChannelCreateFolder, path, err)
	}
	logger.InfoWithIntention(pkgLogger.IntentionWrite, "Folder created", "path", path)
	return bridge.PathResult{Success: true, Path: path}, nil
}

// Rename gives an entry a new name in the same folder. An existing sibling
// with that name is never overwritten.
func (a *Agent) Rename(ctx context.Context, req bridge.RenameRequest) (bridge.PathResult, error) {
	if err := bridge.Validate(&req); err != nil {
		return bridge.PathResult{}, err
	}
	ctx, done, err := a.begin(ctx)
	if err != nil {
		return bridge.PathResult{}, err
	}
	defer done()

	dir := filepath.Dir(req.OldPath)
	newPath := filepath.Join(dir, req.NewName)
	if err := a.checkRoot(req.OldPath, newPath); err != nil {
		return bridge.PathResult{}, a.fail(bridge.ChannelRename, req.OldPath, err)
	}

	oldInfo, err := a.fs.Lstat(ctx, req.OldPath)
	if err != nil {
		return bridge.PathResult{}, a.fail(bridge.ChannelRename, req.OldPath, err)
	}
	if newPath == req.OldPath {
		return bridge.PathResult{Success: true, Path: newPath}, nil
	}

	// A hit on the same entry means only the letter case changed on a
	// case-insensitive volume.
	newInfo, err := a.fs.Lstat(ctx, newPath)
	switch {
	case err == nil && !os.SameFile(oldInfo, newInfo):
		return bridge.PathResult{}, a.fail(bridge.ChannelRename, req.OldPath,
			bridge.Collision("a file or folder named %q already exists in %s", req.NewName, dir))
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return bridge.PathResult{}, a.fail(bridge.ChannelRename, newPath, err)
	}

	if err := a.fs.Rename(ctx, req.OldPath, newPath); err != nil {
		return bridge.PathResult{}, a.fail(bridge.ChannelRename, req.OldPath, err)
	}
	a.roots.forget(req.OldPath)
	logger.InfoWithIntention(pkgLogger.IntentionWrite, "Renamed", "from", req.OldPath, "to", newPath)
	return bridge.PathResult{Success: true, Path: newPath}, nil
}

// Delete removes a file, or a folder with everything in it.
func (a *Agent) Delete(ctx context.Context, req bridge.DeleteRequest) (bridge.DeleteResult, error) {
	if err := bridge.Validate(&req); err != nil {
		return bridge.DeleteResult{}, err
	}
	ctx, done, err := a.begin(ctx)
	if err != nil {
		return bridge.DeleteResult{}, err
	}
	defer done()

	if err := a.checkRoot(req.Path); err != nil {
		return bridge.DeleteResult{}, a.fail(bridge.ChannelDelete, req.Path, err)
	}

	info, err := a.fs.Lstat(ctx, req.Path)
	if err != nil {
		return bridge.DeleteResult{}, a.fail(bridge.ChannelDelete, req.Path, err)
	}
	if info.IsDir() {
		err = a.fs.RemoveAll(ctx, req.Path)
	} else {
		err = a.fs.Remove(ctx, req.Path)
	}
	if err != nil {
		return bridge.DeleteResult{}, a.fail(bridge.ChannelDelete, req.Path, err)
	}
	a.roots.forget(req.Path)
	logger.InfoWithIntention(pkgLogger.IntentionWrite, "Deleted", "path", req.Path, "folder", info.IsDir())
	return bridge.DeleteResult{Success: true}, nil
}

// requireFolder fails unless path exists and is a folder.
func (a *Agent) requireFolder(ctx context.Context, path string) error {
	info, err := a.fs.Stat(ctx, path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return bridge.InvalidTarget("%s is not a folder", path)
	}
	return nil
}
