// Package picker provides the folder chooser behind the open-folder channel.
package picker

import (
	"context"
)

// Picker asks the user for a folder. ok is false when the user cancelled;
// err is reserved for a chooser that could not be shown at all.
type Picker interface {
	PickFolder(ctx context.Context) (path string, ok bool, err error)
}

// Fixed answers every request with the same result. An empty Path means
// the user cancelled.
type Fixed struct {
	Path string
	Err  error
}

func (f Fixed) PickFolder(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if f.Err != nil {
		return "", false, f.Err
	}
	return f.Path, f.Path != "", nil
}
