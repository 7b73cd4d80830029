package cmd

import (
	"io/fs"
	"os"

	"github.com/benbjohnson/clock"

	"github.com/trly/host-ops/internal/log"
)

// NotifyFunc sends an sd_notify state to the service manager.
type NotifyFunc func(unsetEnvironment bool, state string) (bool, error)

// CommonDeps holds the dependencies every command needs.
type CommonDeps struct {
	Clock      clock.Clock
	FileSystem FileSystem
	Logger     log.Logger
}

// NewCommonDeps creates production common dependencies.
func NewCommonDeps(logger log.Logger) CommonDeps {
	fs := NewFileSystemOps()
	return CommonDeps{
		Clock:      clock.New(),
		FileSystem: &fs,
		Logger:     logger,
	}
}

// NewRootDeps creates common dependencies from the app context.
func NewRootDeps(app *App) CommonDeps {
	return NewCommonDeps(app.Logger)
}

// FileSystem is the subset of file operations commands perform, extracted so
// doctor checks and config writes can be tested without touching a disk.
type FileSystem interface {
	Stat(string) (fs.FileInfo, error)
	ReadFile(string) ([]byte, error)
	WriteFile(string, []byte, fs.FileMode) error
	Remove(string) error
	MkdirAll(string, fs.FileMode) error
}

// FileSystemOps implements FileSystem over the os package. Any Func field
// set replaces the corresponding operation, which is how tests inject
// failures.
type FileSystemOps struct {
	StatFunc      func(string) (fs.FileInfo, error)
	ReadFileFunc  func(string) ([]byte, error)
	WriteFileFunc func(string, []byte, fs.FileMode) error
	RemoveFunc    func(string) error
	MkdirAllFunc  func(string, fs.FileMode) error
}

var _ FileSystem = (*FileSystemOps)(nil)

// NewFileSystemOps returns file system operations backed by the os package.
func NewFileSystemOps() FileSystemOps {
	return FileSystemOps{}
}

func (f *FileSystemOps) Stat(path string) (fs.FileInfo, error) {
	if f.StatFunc != nil {
		return f.StatFunc(path)
	}
	return os.Stat(path)
}

func (f *FileSystemOps) ReadFile(path string) ([]byte, error) {
	if f.ReadFileFunc != nil {
		return f.ReadFileFunc(path)
	}
	return os.ReadFile(path)
}

func (f *FileSystemOps) WriteFile(path string, data []byte, perm fs.FileMode) error {
	if f.WriteFileFunc != nil {
		return f.WriteFileFunc(path, data, perm)
	}
	return os.WriteFile(path, data, perm)
}

func (f *FileSystemOps) Remove(path string) error {
	if f.RemoveFunc != nil {
		return f.RemoveFunc(path)
	}
	return os.Remove(path)
}

func (f *FileSystemOps) MkdirAll(path string, perm fs.FileMode) error {
	if f.MkdirAllFunc != nil {
		return f.MkdirAllFunc(path, perm)
	}
	return os.MkdirAll(path, perm)
}
