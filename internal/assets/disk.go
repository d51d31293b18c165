package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// URLMarker separates the public URL prefix from the storage-relative path.
// The server mounts the asset root at this route.
const URLMarker = "/media/"

// DiskStore keeps assets on an afero filesystem rooted at the asset
// directory and serves them under baseURL + URLMarker + path.
type DiskStore struct {
	fs      afero.Fs
	baseURL string
	now     func() time.Time
}

// NewDiskStore constructs a DiskStore. baseURL is the public origin, without
// a trailing slash.
func NewDiskStore(fsys afero.Fs, baseURL string) *DiskStore {
	return &DiskStore{
		fs:      fsys,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}
}

// Store writes data as {folder}/{unixMillis}-{filename}.
func (s *DiskStore) Store(ctx context.Context, data []byte, folder, filename string) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, &WriteError{Path: folder, Err: err}
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), path.Base(filename))
	objectPath := path.Join(folder, name)

	if err := s.fs.MkdirAll(path.Dir(objectPath), 0o755); err != nil {
		return Ref{}, &WriteError{Path: objectPath, Err: err}
	}
	if err := afero.WriteFile(s.fs, objectPath, data, 0o644); err != nil {
		return Ref{}, &WriteError{Path: objectPath, Err: err}
	}

	return s.ref(objectPath), nil
}

// Copy reads the source object and writes it again under
// {base}_copy_{unixMillis}{ext}, giving the copy an independent lifetime.
func (s *DiskStore) Copy(ctx context.Context, ref Ref) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, &ReadError{Path: ref.Path, Err: err}
	}

	data, err := afero.ReadFile(s.fs, ref.Path)
	if err != nil {
		return Ref{}, &ReadError{Path: ref.Path, Err: err}
	}

	ext := path.Ext(ref.Path)
	base := strings.TrimSuffix(ref.Path, ext)
	copyPath := fmt.Sprintf("%s_copy_%d%s", base, s.now().UnixMilli(), ext)

	if err := afero.WriteFile(s.fs, copyPath, data, 0o644); err != nil {
		return Ref{}, &WriteError{Path: copyPath, Err: err}
	}

	return s.ref(copyPath), nil
}

// Delete removes the object. A missing object is treated as already deleted.
func (s *DiskStore) Delete(ctx context.Context, ref Ref) error {
	if err := ctx.Err(); err != nil {
		return &DeleteError{Path: ref.Path, Err: err}
	}

	if err := s.fs.Remove(ref.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &DeleteError{Path: ref.Path, Err: err}
	}
	return nil
}

// RefFromURL parses the storage path out of a public URL: the segment
// between URLMarker and the query string.
func (s *DiskStore) RefFromURL(publicURL string) (Ref, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return Ref{}, &PathParseError{URL: publicURL}
	}

	i := strings.Index(u.Path, URLMarker)
	if i < 0 {
		return Ref{}, &PathParseError{URL: publicURL}
	}

	objectPath := strings.TrimPrefix(u.Path[i:], URLMarker)
	if objectPath == "" {
		return Ref{}, &PathParseError{URL: publicURL}
	}

	return Ref{Path: objectPath, URL: publicURL}, nil
}

// Exists reports whether an object is currently stored at path.
func (s *DiskStore) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

func (s *DiskStore) ref(objectPath string) Ref {
	u := url.URL{Path: URLMarker + objectPath}
	return Ref{Path: objectPath, URL: s.baseURL + u.EscapedPath()}
}
