package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	ok := []any{
		&OpenFolderRequest{},
		&ReadFolderRequest{FolderPath: "/proj"},
		&WriteFileRequest{FilePath: "/proj/a.md"},
		&CreateFileRequest{ParentPath: "/proj", FileName: ".gitignore"},
		&RenameRequest{OldPath: "/proj/a.md", NewName: "b c.md"},
	}
	for _, req := range ok {
		assert.NoError(t, Validate(req), "%#v", req)
	}

	bad := map[string]any{
		"relative":      &ReadFolderRequest{FolderPath: "proj"},
		"unclean":       &ReadFileRequest{FilePath: "/proj/../etc/passwd"},
		"empty path":    &DeleteRequest{Path: ""},
		"name with sep": &CreateFileRequest{ParentPath: "/proj", FileName: "a/b"},
		"dotdot name":   &CreateFolderRequest{ParentPath: "/proj", FolderName: ".."},
		"empty name":    &RenameRequest{OldPath: "/proj/a", NewName: ""},
	}
	for name, req := range bad {
		t.Run(name, func(t *testing.T) {
			err := Validate(req)
			require.Error(t, err)
			assert.Equal(t, KindInvalidTarget, KindOf(err))
		})
	}
}

func TestValidateMessageNamesArgument(t *testing.T) {
	err := Validate(&RenameRequest{OldPath: "/proj/a", NewName: "x/y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newName")
	assert.Contains(t, err.Error(), `"x/y"`)
}
