package file

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/mensylisir/xmexec/common"
)

// PathExists checks if a path exists.
// It returns true if the path exists, false otherwise.
// It distinguishes between "not exist" and other errors. If an error other than "not exist" occurs,
// it will also return false and the error.
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil // Path exists
	}
	if os.IsNotExist(err) {
		return false, nil // Path does not exist, no error for the caller in this specific case
	}
	return false, err // An error occurred (e.g., permission denied)
}

// CreateDir creates a directory and all its parents if they don't exist.
// It uses common.FileMode0755 for directory permissions.
func CreateDir(path string) error {
	exists, err := PathExists(path)
	if err != nil {
		return fmt.Errorf("failed to check directory %s: %w", path, err)
	}
	if exists {
		isDir, err := IsDir(path)
		if err != nil {
			return fmt.Errorf("failed to check directory %s: %w", path, err)
		}
		if isDir {
			return nil // Already a directory, nothing to do
		}
		return fmt.Errorf("path %s exists but is not a directory", path)
	}
	return os.MkdirAll(path, common.FileMode0755)
}

// IsDir checks if the given path is a directory.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil // Not a directory because it doesn't exist
		}
		return false, err // Other error
	}
	return info.IsDir(), nil
}

// WriteString writes content to path with the given permissions, creating the
// file if needed and truncating it otherwise.
func WriteString(path string, content string, perm fs.FileMode) error {
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// ReadString reads the entire file at path into a string.
func ReadString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return string(data), nil
}
