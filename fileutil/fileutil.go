// Package fileutil provides safe file and path helpers: atomic writes,
// guarded reads, JSON files, unique path generation, and directory
// scanning.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// OpError reports a failed file operation with its path.
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("fileutil: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func wrapOp(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Path: path, Err: err}
}

// AtomicWrite writes data to path so that readers never observe a partial
// file: the data goes to a temporary file in the target directory, is
// flushed to disk, and then renamed over path. Parent directories are
// created as needed.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	return AtomicWriteReader(path, bytes.NewReader(data), perm)
}

// AtomicWriteReader is AtomicWrite for streamed content.
func AtomicWriteReader(path string, r io.Reader, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return wrapOp("write", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return wrapOp("write", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return wrapOp("write", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return wrapOp("sync", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return wrapOp("close", path, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return wrapOp("chmod", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return wrapOp("rename", path, err)
	}
	return nil
}

// SafeRead reads path, rejecting directories. The underlying error keeps
// fs.ErrNotExist intact for errors.Is checks.
func SafeRead(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, wrapOp("read", path, err)
	}
	if info.IsDir() {
		return nil, wrapOp("read", path, fmt.Errorf("is a directory"))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapOp("read", path, err)
	}
	return data, nil
}

// Write writes data to path non-atomically, creating parent directories.
func Write(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return wrapOp("write", path, err)
	}
	return wrapOp("write", path, os.WriteFile(path, data, perm))
}

// ReadJSON reads path and unmarshals it into T.
func ReadJSON[T any](path string) (T, error) {
	var out T
	data, err := SafeRead(path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, wrapOp("decode", path, err)
	}
	return out, nil
}

// WriteJSON marshals v with indentation and writes it atomically.
func WriteJSON(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return wrapOp("encode", path, err)
	}
	return AtomicWrite(path, append(data, '\n'), perm)
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDir creates the directory and its parents. The permission
// defaults to 0o755.
func EnsureDir(path string, perm ...os.FileMode) error {
	mode := os.FileMode(0o755)
	if len(perm) > 0 {
		mode = perm[0]
	}
	return wrapOp("mkdir", path, os.MkdirAll(path, mode))
}

// FileInfo summarizes a filesystem entry.
type FileInfo struct {
	Path    string
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
	IsDir   bool
}

// Info stats path.
func Info(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, wrapOp("stat", path, err)
	}
	return FileInfo{
		Path:    path,
		Size:    st.Size(),
		Mode:    st.Mode(),
		ModTime: st.ModTime(),
		IsDir:   st.IsDir(),
	}, nil
}

// Checksum returns the hex SHA-256 digest of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", wrapOp("checksum", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", wrapOp("checksum", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SplitPath splits a path into its parent directory and base name.
func SplitPath(path string) (dir, name string) {
	return filepath.Dir(path), filepath.Base(path)
}

// UniquePath returns a path under dir for name that does not collide with
// an existing file, appending _1, _2, ... before the extension as needed.
func UniquePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	if !Exists(candidate) {
		return candidate
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if !Exists(candidate) {
			return candidate
		}
	}
}

// MovePath renames src to dst, creating dst's parent directories. An
// existing destination is an error unless overwrite is passed as true.
func MovePath(src, dst string, overwrite ...bool) error {
	if Exists(dst) && (len(overwrite) == 0 || !overwrite[0]) {
		return wrapOp("move", dst, fmt.Errorf("destination exists"))
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return wrapOp("move", dst, err)
	}
	return wrapOp("move", src, os.Rename(src, dst))
}

// ScanOption adjusts ScanDir behavior.
type ScanOption func(*scanOptions)

type scanOptions struct {
	pattern   string
	recursive bool
	dirs      bool
	exclude   []string
}

// WithPattern keeps only entries whose base name matches the glob
// pattern.
func WithPattern(glob string) ScanOption {
	return func(o *scanOptions) { o.pattern = glob }
}

// WithRecursive descends into subdirectories.
func WithRecursive() ScanOption {
	return func(o *scanOptions) { o.recursive = true }
}

// WithDirs includes directories in the results.
func WithDirs() ScanOption {
	return func(o *scanOptions) { o.dirs = true }
}

// WithExclude skips entries whose base name matches any of the glob
// patterns; excluded directories are not descended into.
func WithExclude(globs ...string) ScanOption {
	return func(o *scanOptions) { o.exclude = append(o.exclude, globs...) }
}

// ScanDir lists the entries of dir as sorted paths. By default it returns
// the files directly inside dir; see the options for patterns, recursion,
// directories, and exclusions.
func ScanDir(dir string, opts ...ScanOption) ([]string, error) {
	o := scanOptions{pattern: "*"}
	for _, opt := range opts {
		opt(&o)
	}
	if !IsDir(dir) {
		return nil, wrapOp("scan", dir, fmt.Errorf("not a directory"))
	}

	var out []string
	var walk func(string) error
	walk = func(current string) error {
		entries, err := os.ReadDir(current)
		if err != nil {
			return wrapOp("scan", current, err)
		}
		for _, entry := range entries {
			full := filepath.Join(current, entry.Name())
			if matchAny(o.exclude, entry.Name()) {
				continue
			}
			if entry.IsDir() {
				if o.dirs && matchGlob(o.pattern, entry.Name()) {
					out = append(out, full)
				}
				if o.recursive {
					if err := walk(full); err != nil {
						return err
					}
				}
				continue
			}
			if matchGlob(o.pattern, entry.Name()) {
				out = append(out, full)
			}
		}
		return nil
	}
	if err := walk(dir); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func matchGlob(pattern, name string) bool {
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if matchGlob(p, name) {
			return true
		}
	}
	return false
}
