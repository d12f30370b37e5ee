package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"opecbrain/entity"
)

// JSONFile keeps the whole collection in one JSON array document,
// the same layout the first versions of the tool wrote to historico.json.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (f *JSONFile) Path() string { return f.path }

// Init creates the folder and an empty document when the file is missing.
// The document is created exclusively: a file that appears meanwhile, from
// another process, is left as is.
func (f *JSONFile) Init() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("JSONFile.Init: %w", err)
	}
	file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("JSONFile.Init: %w", err)
	}
	_, werr := file.Write([]byte("[]\n"))
	if err := errors.Join(werr, file.Sync(), file.Close()); err != nil {
		return fmt.Errorf("JSONFile.Init: %w", err)
	}
	return nil
}

func (f *JSONFile) ReadAll() ([]entity.Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("JSONFile.ReadAll: %w", err)
	}
	records := []entity.Record{}
	if len(bytes.TrimSpace(data)) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		f.keepCorrupt(data)
		return nil, fmt.Errorf("JSONFile.ReadAll: %w: %v", ErrCorrupt, err)
	}
	if records == nil {
		// a literal null document
		records = []entity.Record{}
	}
	return records, nil
}

// WriteAll replaces the document atomically: the collection goes to a temp
// file in the same folder which is then renamed over the target.
func (f *JSONFile) WriteAll(records []entity.Record) error {
	if records == nil {
		records = []entity.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("JSONFile.WriteAll: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("JSONFile.WriteAll: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("JSONFile.WriteAll: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("JSONFile.WriteAll: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("JSONFile.WriteAll: %w", err)
	}
	return nil
}

// keepCorrupt copies an undecodable document aside before the next write
// replaces it. Best effort.
func (f *JSONFile) keepCorrupt(data []byte) {
	_ = os.WriteFile(f.path+".corrupt", data, 0o644)
}
