package gitrepo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const gitMetadataDirectoryNameConstant = ".git"

// FileSystem abstracts the filesystem operations needed around repositories.
type FileSystem interface {
	Stat(path string) (os.FileInfo, error)
	MkdirAll(path string, permissions os.FileMode) error
}

// OSFileSystem implements FileSystem using the operating system.
type OSFileSystem struct{}

// Stat reports file information for the provided path.
func (OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// MkdirAll creates the directory path together with any missing parents.
func (OSFileSystem) MkdirAll(path string, permissions os.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// RepositoryExists reports whether git metadata is present under the repository path.
func RepositoryExists(fileSystem FileSystem, repositoryPath string) (bool, error) {
	_, statError := fileSystem.Stat(filepath.Join(repositoryPath, gitMetadataDirectoryNameConstant))
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return false, nil
		}
		return false, statError
	}
	return true, nil
}
