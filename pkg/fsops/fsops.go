// Package fsops implements the file and directory operations exposed to the
// model. Every operation returns a Result instead of an error.
package fsops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	loggerpkg "github.com/minhyannv/pc-agent-go/pkg/logger"
)

// DefaultMaxReadBytes caps how much of a file Read returns.
const DefaultMaxReadBytes int64 = 1024 * 1024

const accessDeniedMessage = "Access denied. Possible causes:\n" +
	"• File/folder is open in another program (close it!)\n" +
	"• Antivirus is locking it\n" +
	"• You need to run the agent with elevated privileges (Administrator/sudo)\n" +
	"• It's a system/protected folder"

// FS runs filesystem operations against the host filesystem.
type FS struct {
	MaxReadBytes int64
	Logger       loggerpkg.Logger
	Verbose      bool

	remove       func(string) error
	removeAll    func(string) error
	rename       func(string, string) error
	makeWritable func(string) error
	unlockDir    func(string) error
}

// New returns an FS using the real filesystem.
func New(maxReadBytes int64, logger loggerpkg.Logger, verbose bool) *FS {
	if maxReadBytes <= 0 {
		maxReadBytes = DefaultMaxReadBytes
	}
	if logger == nil {
		logger = loggerpkg.NopLogger{}
	}
	return &FS{
		MaxReadBytes: maxReadBytes,
		Logger:       logger,
		Verbose:      verbose,
		remove:       os.Remove,
		removeAll:    os.RemoveAll,
		rename:       os.Rename,
		makeWritable: makeWritable,
		unlockDir:    unlockDir,
	}
}

func (f *FS) debugf(format string, args ...any) {
	loggerpkg.Debugf(f.Verbose, f.Logger, format, args...)
}

// Read returns the UTF-8 text content of path.
func (f *FS) Read(path string) Result {
	path = cleanArg(path)
	if path == "" {
		return Result{KindInvalid, "Error: file name is required."}
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{KindNotFound, fmt.Sprintf("Error: The file '%s' was not found.", path)}
		}
		return Result{classify(err), fmt.Sprintf("Error reading file: %v", err)}
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return Result{classify(err), fmt.Sprintf("Error reading file: %v", err)}
	}
	if info.IsDir() {
		return Result{KindInvalid, fmt.Sprintf("Error: '%s' is a directory, not a file.", path)}
	}

	data, err := io.ReadAll(io.LimitReader(file, f.MaxReadBytes+1))
	if err != nil {
		return Result{classify(err), fmt.Sprintf("Error reading file: %v", err)}
	}

	truncated := int64(len(data)) > f.MaxReadBytes
	if truncated {
		data = trimPartialRune(data[:f.MaxReadBytes])
	}
	if !utf8.Valid(data) {
		return Result{KindDecode, fmt.Sprintf("Error reading file: '%s' is not valid UTF-8 text.", path)}
	}
	f.debugf("[verbose] fsops: read %s, %d bytes (truncated=%v)", path, len(data), truncated)

	content := string(data)
	if truncated {
		content += fmt.Sprintf("\n\n[truncated: showing the first %d of %d bytes]", len(data), info.Size())
	}
	return Result{KindOK, content}
}

// Write replaces the content of path, creating missing parent directories.
func (f *FS) Write(path, content string) Result {
	path = cleanArg(path)
	if path == "" {
		return Result{KindInvalid, "Error: file name is required."}
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{classify(err), fmt.Sprintf("Error writing file: %v", err)}
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return Result{classify(err), fmt.Sprintf("Error writing file: %v", err)}
	}
	f.debugf("[verbose] fsops: wrote %s, %d bytes", path, len(content))
	return Result{KindOK, fmt.Sprintf("Successfully wrote to %s.", path)}
}

// Remove deletes a file, symlink or directory tree. A permission failure is
// retried once after making every entry writable.
func (f *FS) Remove(path string) Result {
	path = cleanArg(path)
	if path == "" {
		return Result{KindInvalid, "Error: path is required."}
	}

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{KindNotFound, fmt.Sprintf("Path not found: %s", path)}
		}
		return Result{classify(err), fmt.Sprintf("Error: %v", err)}
	}

	isDir := info.IsDir()
	removeFn := f.remove
	if isDir {
		removeFn = f.removeAll
	}

	err = removeFn(path)
	if err == nil {
		if isDir {
			return Result{KindOK, fmt.Sprintf("Folder deleted: %s", path)}
		}
		return Result{KindOK, fmt.Sprintf("File deleted: %s", path)}
	}
	if !errors.Is(err, fs.ErrPermission) {
		return Result{KindError, fmt.Sprintf("Error: %v", err)}
	}

	f.debugf("[verbose] fsops: remove %s denied, fixing permissions: %v", path, err)
	f.repairPermissions(path)
	if err := removeFn(path); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return Result{KindPermission, accessDeniedMessage}
		}
		return Result{KindError, fmt.Sprintf("Error: %v", err)}
	}
	return Result{KindRepaired, fmt.Sprintf("Deleted (after fixing permissions): %s", path)}
}

// Move relocates src. When dst is an existing directory src is moved into it.
func (f *FS) Move(src, dst string) Result {
	src, dst = cleanArg(src), cleanArg(dst)
	if src == "" || dst == "" {
		return Result{KindInvalid, "Error: both a source path and a destination are required."}
	}
	if _, err := os.Lstat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{KindNotFound, fmt.Sprintf("Error: Source path '%s' not found.", src)}
		}
		return Result{classify(err), fmt.Sprintf("Error moving path: %v", err)}
	}

	target := dst
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		target = filepath.Join(dst, filepath.Base(src))
	}
	if _, err := os.Lstat(target); err == nil {
		return Result{KindExists, fmt.Sprintf("Error: Destination path '%s' already exists.", target)}
	}

	err := f.move(src, target)
	if err == nil {
		return Result{KindOK, fmt.Sprintf("Successfully moved %s to %s.", src, dst)}
	}
	var leftover *sourceLeftError
	if errors.As(err, &leftover) {
		return f.finishCopiedMove(src, dst, leftover)
	}
	if !errors.Is(err, fs.ErrPermission) {
		return Result{classify(err), fmt.Sprintf("Error moving path: %v", err)}
	}

	f.debugf("[verbose] fsops: move %s denied, fixing permissions: %v", src, err)
	f.repairPermissions(src)
	if err := f.move(src, target); err != nil {
		if errors.As(err, &leftover) {
			return f.finishCopiedMove(src, dst, leftover)
		}
		return Result{KindPermission, fmt.Sprintf("Permission denied and failed to move %s to %s after retrying: %v", src, dst, err)}
	}
	return Result{KindRepaired, fmt.Sprintf("Moved %s to %s (after fixing permissions).", src, dst)}
}

// finishCopiedMove handles a move whose copy is complete but whose source
// could not be removed. The copy is never redone; only the source cleanup is
// retried once after fixing permissions.
func (f *FS) finishCopiedMove(src, dst string, leftover *sourceLeftError) Result {
	if !errors.Is(leftover.err, fs.ErrPermission) {
		return Result{KindError, fmt.Sprintf("Moved %s to %s, but the source could not be fully removed: %v", src, dst, leftover.err)}
	}
	f.debugf("[verbose] fsops: cleanup of %s denied, fixing permissions: %v", src, leftover.err)
	f.repairPermissions(src)
	if err := f.removeAll(src); err != nil {
		return Result{KindPermission, fmt.Sprintf("Moved %s to %s, but the source could not be fully removed: %v", src, dst, err)}
	}
	return Result{KindRepaired, fmt.Sprintf("Moved %s to %s (after fixing permissions).", src, dst)}
}

// repairPermissions makes path and its parent directory writable. Errors are
// only logged; the retried operation reports the outcome.
func (f *FS) repairPermissions(path string) {
	if err := f.makeWritable(path); err != nil {
		f.debugf("[verbose] fsops: make writable %s: %v", path, err)
	}
	parent := filepath.Dir(filepath.Clean(path))
	if err := f.unlockDir(parent); err != nil {
		f.debugf("[verbose] fsops: unlock parent %s: %v", parent, err)
	}
}

// sourceLeftError reports a copy-based move whose destination is complete
// but whose source removal failed.
type sourceLeftError struct {
	err error
}

func (e *sourceLeftError) Error() string {
	return "remove source after copy: " + e.err.Error()
}

func (e *sourceLeftError) Unwrap() error { return e.err }

// move renames src to dst, copying and deleting when a plain rename is not
// possible (for example across filesystems).
func (f *FS) move(src, dst string) error {
	err := f.rename(src, dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrExist) {
		return err
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}

	if _, lerr := os.Lstat(dst); lerr == nil {
		return &fs.PathError{Op: "move", Path: dst, Err: fs.ErrExist}
	}
	f.debugf("[verbose] fsops: rename %s failed (%v), copying instead", src, err)
	if cerr := copyTree(src, dst); cerr != nil {
		// dst did not exist before this attempt, so it holds only a partial copy.
		_ = os.RemoveAll(dst)
		return cerr
	}
	if rerr := f.removeAll(src); rerr != nil {
		return &sourceLeftError{err: rerr}
	}
	return nil
}

// Rename renames a file or folder in place.
func (f *FS) Rename(oldName, newName string) Result {
	oldName, newName = cleanArg(oldName), cleanArg(newName)
	if oldName == "" || newName == "" {
		return Result{KindInvalid, "Error: both the old and the new name are required."}
	}
	if _, err := os.Lstat(oldName); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{KindNotFound, fmt.Sprintf("Error: File or folder '%s' not found.", oldName)}
		}
		return Result{classify(err), fmt.Sprintf("Error renaming file/folder: %v", err)}
	}
	if _, err := os.Lstat(newName); err == nil {
		return Result{KindExists, fmt.Sprintf("Error: '%s' already exists.", newName)}
	}
	if err := f.rename(oldName, newName); err != nil {
		return Result{classify(err), fmt.Sprintf("Error renaming file/folder: %v", err)}
	}
	return Result{KindOK, fmt.Sprintf("Successfully renamed %s to %s.", oldName, newName)}
}

// CreateFolder creates a single directory level.
func (f *FS) CreateFolder(path string) Result {
	path = cleanArg(path)
	if path == "" {
		return Result{KindInvalid, "Error: folder name is required."}
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return Result{KindExists, fmt.Sprintf("Error: Folder '%s' already exists.", path)}
		}
		return Result{classify(err), fmt.Sprintf("Error creating folder: %v", err)}
	}
	return Result{KindOK, fmt.Sprintf("Successfully created folder '%s'.", path)}
}

// List names the immediate children of dir, tagging each as [DIR] or [FILE].
// An empty dir defaults to the working directory.
func (f *FS) List(dir string) Result {
	dir = cleanArg(dir)
	if dir == "" {
		dir = "."
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{KindNotFound, fmt.Sprintf("Error: '%s' is not a valid directory.", dir)}
		}
		return Result{classify(err), fmt.Sprintf("Error checking path: %v", err)}
	}
	if !info.IsDir() {
		return Result{KindInvalid, fmt.Sprintf("Error: '%s' is not a valid directory.", dir)}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{classify(err), fmt.Sprintf("Error checking path: %v", err)}
	}
	if len(entries) == 0 {
		return Result{KindEmpty, fmt.Sprintf("The directory '%s' is empty.", dir)}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Contents of '%s':\n", dir))
	for _, entry := range entries {
		// Stat follows symlinks so a link to a directory is listed as one.
		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			if target, err := os.Stat(filepath.Join(dir, entry.Name())); err == nil {
				isDir = target.IsDir()
			}
		}
		if isDir {
			sb.WriteString("[DIR] ")
		} else {
			sb.WriteString("[FILE] ")
		}
		sb.WriteString(entry.Name())
		sb.WriteString("\n")
	}
	return Result{KindOK, sb.String()}
}

// cleanArg trims whitespace and the quotes left over from "copy as path".
func cleanArg(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case errors.Is(err, fs.ErrExist):
		return KindExists
	default:
		return KindError
	}
}

// trimPartialRune drops an incomplete UTF-8 sequence left at the end of a
// truncated read.
func trimPartialRune(data []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(data) > 0; i++ {
		r, size := utf8.DecodeLastRune(data)
		if r != utf8.RuneError || size != 1 {
			return data
		}
		data = data[:len(data)-1]
	}
	return data
}
