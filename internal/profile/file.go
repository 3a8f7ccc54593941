package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

const DefaultFilePath = "autofill-profile.json"

// FileStore keeps the storage area in a single file, JSON or CBOR by extension:
//
//	{"userData": {"personalInfo": {...}, "experiences": [...], ...}}
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	if strings.TrimSpace(path) == "" {
		path = DefaultFilePath
	}

	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) isCBOR() bool {
	return strings.EqualFold(filepath.Ext(s.path), ".cbor")
}

func (s *FileStore) GetFormData(_ context.Context) (*FormData, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading profile file %q: %w", s.path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrNotFound
	}

	area, err := s.unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parsing profile file %q: %w", s.path, err)
	}

	raw, ok := area[FormDataKey].(map[string]any)
	if !ok {
		return nil, ErrNotFound
	}

	p, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	return &FormData{UserData: p}, nil
}

func (s *FileStore) SaveFormData(_ context.Context, p *Profile) error {
	area := map[string]*Profile{FormDataKey: p}

	var (
		data []byte
		err  error
	)
	if s.isCBOR() {
		var mode cbor.EncMode
		mode, err = cbor.EncOptions{Time: cbor.TimeRFC3339}.EncMode()
		if err == nil {
			data, err = mode.Marshal(area)
		}
	} else {
		data, err = json.MarshalIndent(area, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing profile file %q: %w", s.path, err)
	}

	return nil
}

func (s *FileStore) unmarshal(data []byte) (map[string]any, error) {
	var area map[string]any

	if !s.isCBOR() {
		err := json.Unmarshal(data, &area)
		return area, err
	}

	mode, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, err
	}

	err = mode.Unmarshal(data, &area)
	return area, err
}

var (
	_ Store  = (*FileStore)(nil)
	_ Writer = (*FileStore)(nil)
)
