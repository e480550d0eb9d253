package sources

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("file not found on server")

// Fetcher opens local files and HTTP(S) URLs, keeping a copy of every
// download in CacheDir.
type Fetcher struct {
	CacheDir string
	Client   *http.Client
	// NoCache streams downloads without writing them to CacheDir.
	NoCache bool
}

// Open opens a local path or an http(s) URL using DefaultCacheDir.
func Open(pathOrURL string) (io.ReadCloser, error) {
	return (&Fetcher{CacheDir: DefaultCacheDir}).Open(pathOrURL)
}

func (f *Fetcher) Open(pathOrURL string) (io.ReadCloser, error) {
	if !isURL(pathOrURL) {
		file, err := os.Open(pathOrURL)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", pathOrURL, err)
		}
		return file, nil
	}
	return f.GetCachedReader(pathOrURL, !f.NoCache)
}

// ReadAll opens pathOrURL and reads it fully.
func (f *Fetcher) ReadAll(pathOrURL string) ([]byte, error) {
	r, err := f.Open(pathOrURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Printf("Error closing %s: %v", pathOrURL, err)
		}
	}()
	return io.ReadAll(r)
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) cacheDir() string {
	if f.CacheDir != "" {
		return f.CacheDir
	}
	return DefaultCacheDir
}

// GetCachedReader returns a reader for url, downloading it into the cache
// first when useCache is set and no cached copy exists.
func (f *Fetcher) GetCachedReader(url string, useCache bool) (io.ReadCloser, error) {
	if useCache {
		dir := f.cacheDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
		localPath := filepath.Join(dir, CacheFileName(url))

		if _, err := os.Stat(localPath); os.IsNotExist(err) {
			log.Printf("Downloading %s", url)
			if err := f.DownloadFile(url, localPath); err != nil {
				return nil, err
			}
		} else {
			log.Printf("Using cached file: %s", localPath)
		}
		file, err := os.Open(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		return file, nil
	}

	log.Printf("Streaming from %s", url)
	resp, err := f.client().Get(url)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Printf("Error closing response body: %v", cerr)
		}
		return nil, err
	}
	return resp.Body, nil
}

// DownloadFile downloads url to path. The file only appears at path once the
// download has completed.
func (f *Fetcher) DownloadFile(url, path string) error {
	resp, err := f.client().Get(url)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()
	if err := checkStatus(resp); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !os.IsNotExist(err) {
			log.Printf("Error removing temp file %s: %v", tmpName, err)
		}
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// CacheFileName returns the local file name used for url. Query strings are
// folded into the name so distinct URLs do not collide.
func CacheFileName(url string) string {
	rest := url
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	base, query, _ := strings.Cut(rest, "?")
	parts := strings.Split(strings.TrimSuffix(base, "/"), "/")
	name := parts[len(parts)-1]
	if len(parts) > 1 {
		name = parts[0] + "_" + name
	}
	if query != "" {
		name += "_" + query
	}
	return strings.NewReplacer(":", "_", "&", "_", "=", "-", "/", "_").Replace(name)
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("bad status: %s", resp.Status)
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
