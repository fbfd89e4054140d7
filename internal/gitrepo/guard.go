package gitrepo

import (
	"context"
	"fmt"
	"path/filepath"
)

const (
	topLevelMismatchTemplateConstant   = "run this command from the repository top level %s (currently in %s)"
	topLevelUnresolvedTemplateConstant = "unable to resolve repository top level: %w"
)

// WorkingDirectoryMismatchError reports an invocation outside the repository top level.
type WorkingDirectoryMismatchError struct {
	TopLevelDirectory string
	WorkingDirectory  string
}

// Error describes the mismatch.
func (mismatchError WorkingDirectoryMismatchError) Error() string {
	return fmt.Sprintf(topLevelMismatchTemplateConstant, mismatchError.TopLevelDirectory, mismatchError.WorkingDirectory)
}

// EnsureTopLevelWorkingDirectory verifies that workingDirectory is the repository top level.
func EnsureTopLevelWorkingDirectory(executionContext context.Context, manager *RepositoryManager, workingDirectory string) error {
	topLevelDirectory, topLevelError := manager.GetTopLevelDirectory(executionContext, workingDirectory)
	if topLevelError != nil {
		return fmt.Errorf(topLevelUnresolvedTemplateConstant, topLevelError)
	}

	normalizedWorkingDirectory := filepath.Clean(workingDirectory)
	normalizedTopLevelDirectory := filepath.Clean(topLevelDirectory)
	if normalizedWorkingDirectory != normalizedTopLevelDirectory {
		return WorkingDirectoryMismatchError{
			TopLevelDirectory: normalizedTopLevelDirectory,
			WorkingDirectory:  normalizedWorkingDirectory,
		}
	}

	return nil
}
