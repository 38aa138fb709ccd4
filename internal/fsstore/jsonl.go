package fsstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var errWriterClosed = errors.New("fsstore: jsonl writer closed")

type JSONLOptions struct {
	FileOptions
	// RotateMaxBytes caps the live file; a write that would exceed it first
	// moves the file aside as <path>.<UTC timestamp>[.<n>]. Zero means
	// DefaultRotateBytes, negative disables rotation.
	RotateMaxBytes int64
	// Sync fsyncs after every record. Records are always flushed.
	Sync bool
}

// JSONLWriter appends one JSON document per line. It is safe for concurrent
// use within a process; cross-process callers serialize with WithLock.
type JSONLWriter struct {
	path string
	opts JSONLOptions

	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	size   int64
	closed bool

	now func() time.Time
}

func NewJSONLWriter(path string, opts JSONLOptions) (*JSONLWriter, error) {
	p, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	opts.FileOptions = opts.FileOptions.withDefaults()
	if opts.RotateMaxBytes == 0 {
		opts.RotateMaxBytes = DefaultRotateBytes
	}
	w := &JSONLWriter{path: p, opts: opts, now: time.Now}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *JSONLWriter) Path() string { return w.path }

func (w *JSONLWriter) AppendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: jsonl encode %s: %v", ErrEncodeFailed, w.path, err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errWriterClosed
	}
	if err := w.rotateFor(int64(len(data))); err != nil {
		return err
	}
	n, err := w.buf.Write(data)
	w.size += int64(n)
	if err != nil {
		return err
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if w.opts.Sync {
		return w.file.Sync()
	}
	return nil
}

func (w *JSONLWriter) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.closeFile()
}

func (w *JSONLWriter) closeFile() error {
	if w.file == nil {
		return nil
	}
	flushErr := w.buf.Flush()
	err := w.file.Close()
	w.file, w.buf, w.size = nil, nil, 0
	if flushErr != nil {
		return flushErr
	}
	return err
}

func (w *JSONLWriter) rotateFor(incoming int64) error {
	if w.opts.RotateMaxBytes < 0 || w.size == 0 || w.size+incoming <= w.opts.RotateMaxBytes {
		return nil
	}
	_ = w.closeFile()
	if err := w.moveAside(); err != nil {
		return err
	}
	return w.open()
}

func (w *JSONLWriter) moveAside() error {
	base := w.path + "." + w.now().UTC().Format("20060102T150405Z")
	target := base
	for i := 1; ; i++ {
		_, err := os.Stat(target)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return err
		}
		target = fmt.Sprintf("%s.%d", base, i)
	}
	if err := os.Rename(w.path, target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (w *JSONLWriter) open() error {
	if err := EnsureDir(filepath.Dir(w.path), w.opts.DirPerm); err != nil {
		return err
	}
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, w.opts.FilePerm)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return err
	}
	w.file = file
	w.buf = bufio.NewWriterSize(file, 32*1024)
	w.size = info.Size()
	return nil
}
