package docs

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apperrors "chainorg/internal/shared_kernel/errors"
)

// FileOpenAPISpecReadModel serves the OpenAPI document from disk. The file
// is read once; a failed read is retried on the next call.
type FileOpenAPISpecReadModel struct {
	path string

	mu      sync.Mutex
	content []byte
}

func NewFileOpenAPISpecReadModel(path string) *FileOpenAPISpecReadModel {
	return &FileOpenAPISpecReadModel{
		path: path,
	}
}

func (r *FileOpenAPISpecReadModel) Read(_ context.Context) ([]byte, string, *apperrors.AppError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.content == nil {
		content, err := os.ReadFile(r.path)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				return nil, "", apperrors.NewNotFound(
					"openapi_spec_not_found",
					"OpenAPI spec file does not exist",
					map[string]any{"path": r.path},
				)
			}
			return nil, "", apperrors.NewInternal(
				"openapi_spec_read_failed",
				"failed to read OpenAPI spec file",
				map[string]any{"path": r.path, "error": err.Error()},
			)
		}
		r.content = content
	}

	return r.content, contentTypeFor(r.path), nil
}

func contentTypeFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "application/json; charset=utf-8"
	}
	return "application/yaml; charset=utf-8"
}
