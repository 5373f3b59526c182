package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuitable/internal/model"
)

// Collection names one of the lecture lists the catalog is assembled from.
type Collection string

// Catalog collections, in concatenation order.
const (
	Majors      Collection = "majors"
	LiberalArts Collection = "liberal-arts"
)

// Collections lists every collection in the order they are concatenated.
var Collections = []Collection{Majors, LiberalArts}

// ErrUnknownCollection is returned when a source has no path for a collection.
var ErrUnknownCollection = errors.New("unknown catalog collection")

// DefaultPaths are the file names the collections are published under.
var DefaultPaths = map[Collection]string{
	Majors:      "schedules-majors.json",
	LiberalArts: "schedules-liberal-arts.json",
}

const defaultTimeout = 30 * time.Second

// Source fetches the raw records of one collection.
type Source interface {
	Fetch(ctx context.Context, c Collection) ([]model.Lecture, error)
}

// HTTPSource fetches collections as JSON arrays relative to a base URL.
type HTTPSource struct {
	BaseURL string
	Paths   map[Collection]string
	Client  *http.Client
}

// NewHTTPSource returns an HTTPSource with default paths and the given timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPSource{
		BaseURL: baseURL,
		Paths:   DefaultPaths,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, c Collection) ([]model.Lecture, error) {
	rel, err := pathFor(s.Paths, c)
	if err != nil {
		return nil, err
	}
	target, err := joinURL(s.BaseURL, rel)
	if err != nil {
		return nil, err
	}
	resp, err := s.request(ctx, target)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status for %s: %s", c, resp.Status)
	}
	return decodeLectures(resp.Body, string(c))
}

func (s *HTTPSource) request(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// DirSource reads collections from JSON files in a local directory.
type DirSource struct {
	Dir   string
	Paths map[Collection]string
}

// NewDirSource returns a DirSource with default paths.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir, Paths: DefaultPaths}
}

// Fetch implements Source.
func (s *DirSource) Fetch(_ context.Context, c Collection) ([]model.Lecture, error) {
	rel, err := pathFor(s.Paths, c)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(s.Dir, rel))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only catalog file.
			_ = cerr
		}
	}()
	return decodeLectures(file, string(c))
}

func pathFor(paths map[Collection]string, c Collection) (string, error) {
	if paths == nil {
		paths = DefaultPaths
	}
	rel, ok := paths[c]
	if !ok || rel == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownCollection, c)
	}
	return rel, nil
}

func joinURL(base, rel string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("catalog base URL is empty")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid catalog base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	ref, err := url.Parse(rel)
	if err != nil {
		return "", fmt.Errorf("invalid collection path %q: %w", rel, err)
	}
	return u.ResolveReference(ref).String(), nil
}

func decodeLectures(r io.Reader, name string) ([]model.Lecture, error) {
	var lectures []model.Lecture
	if err := json.NewDecoder(r).Decode(&lectures); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return lectures, nil
}
