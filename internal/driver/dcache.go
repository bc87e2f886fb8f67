package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"testlint/internal/config"
	"testlint/internal/diag"
	"testlint/internal/dialect"
	"testlint/internal/rules"
	"testlint/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты анализа по ключу содержимое+конфигурация.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload stores a cached per-file analysis result.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path     string
	Dialect  uint8
	Cases    int
	Fixtures int

	Diagnostics []DiskDiagnostic
}

// DiskDiagnostic is the serializable form of one diagnostic. Spans keep
// only offsets; the file id is reattached on restore.
type DiskDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Suite    string
	Case     string
	Notes    []DiskNote
}

// DiskNote mirrors diag.Note without the file id.
type DiskNote struct {
	Start uint32
	End   uint32
	Msg   string
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt initializes a disk cache in an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key config.Digest) string {
	hexKey := fmt.Sprintf("%x", key[:])
	// Для удобства читаемости/очистки — подкаталог "files".
	return filepath.Join(c.dir, "files", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key config.Digest, payload *DiskPayload) error {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// После удачного Rename временного файла уже нет.
		if removeErr := os.Remove(f.Name()); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			fmt.Printf("failed to remove temp file: %v", removeErr)
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key config.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			panic(closeErr)
		}
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим в фоне
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// cacheKey связывает содержимое файла, его путь и конфигурацию.
// Путь входит в ключ: имена сьютов могут выводиться из имени файла,
// поэтому одинаковое содержимое под разными путями кешируется раздельно.
func cacheKey(file *source.File, cfg *config.Config) config.Digest {
	var schema config.Digest
	binary.BigEndian.PutUint16(schema[:], diskCacheSchemaVersion)
	return config.Combine(config.Digest(file.Hash), cfg.Digest(), pathDigest(file.Path), schema)
}

func pathDigest(path string) config.Digest {
	return config.Digest(sha256.Sum256([]byte(path)))
}

// payloadFromResult converts a FileResult to DiskPayload for caching
func payloadFromResult(result *FileResult) *DiskPayload {
	if result == nil {
		return nil
	}
	payload := &DiskPayload{
		Schema:   diskCacheSchemaVersion,
		Path:     result.Path,
		Dialect:  uint8(result.Dialect),
		Cases:    result.Cases,
		Fixtures: result.Fixtures,
	}
	payload.Diagnostics = make([]DiskDiagnostic, len(result.Summary.Diagnostics))
	for i := range result.Summary.Diagnostics {
		payload.Diagnostics[i] = toDiskDiagnostic(&result.Summary.Diagnostics[i])
	}
	return payload
}

// resultFromPayload converts DiskPayload back to a FileResult. A schema
// mismatch reads as a miss.
func resultFromPayload(payload *DiskPayload, file *source.File) *FileResult {
	if payload == nil || file == nil || payload.Schema != diskCacheSchemaVersion {
		return nil
	}
	diags := make([]diag.Diagnostic, len(payload.Diagnostics))
	for i := range payload.Diagnostics {
		diags[i] = payload.Diagnostics[i].diagnostic(file.ID)
	}
	return &FileResult{
		Path:      file.Path,
		FileID:    file.ID,
		Dialect:   dialect.Kind(payload.Dialect),
		Cases:     payload.Cases,
		Fixtures:  payload.Fixtures,
		Summary:   rules.Summarize(file.Path, diags),
		FromCache: true,
	}
}

func toDiskDiagnostic(d *diag.Diagnostic) DiskDiagnostic {
	out := DiskDiagnostic{
		Severity: uint8(d.Severity),
		Code:     uint16(d.Code),
		Message:  d.Message,
		Start:    d.Primary.Start,
		End:      d.Primary.End,
		Suite:    d.Test.Suite,
		Case:     d.Test.Case,
	}
	if len(d.Notes) > 0 {
		out.Notes = make([]DiskNote, len(d.Notes))
		for i, n := range d.Notes {
			out.Notes[i] = DiskNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg}
		}
	}
	return out
}

func (d *DiskDiagnostic) diagnostic(id source.FileID) diag.Diagnostic {
	out := diag.Diagnostic{
		Severity: diag.Severity(d.Severity),
		Code:     diag.Code(d.Code),
		Message:  d.Message,
		Primary:  restoreSpan(id, d.Start, d.End),
		Test:     diag.TestRef{Suite: d.Suite, Case: d.Case},
	}
	if len(d.Notes) > 0 {
		out.Notes = make([]diag.Note, len(d.Notes))
		for i, n := range d.Notes {
			out.Notes[i] = diag.Note{Span: restoreSpan(id, n.Start, n.End), Msg: n.Msg}
		}
	}
	return out
}

func restoreSpan(id source.FileID, start, end uint32) source.Span {
	return source.Span{File: id, Start: start, End: end}
}
