// Package course resolves course descriptors for oracle requests.
package course

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mkoda/bifrost/internal/types"
)

// fetchTimeout bounds a remote course lookup; an unavailable source resolves
// to "no course", never an error surfaced to the optimizer.
const fetchTimeout = 10 * time.Second

// Provider looks up course descriptors by id. A nil course with a nil error
// means the id is unknown; callers treat that as "no signal".
type Provider interface {
	Course(ctx context.Context, id string) (*types.Course, error)
}

// FileProvider serves course descriptors from a local JSON document mapping
// course id to descriptor.
type FileProvider struct {
	path string

	mu   sync.Mutex
	data map[string]*types.Course
}

// NewFileProvider creates a provider reading from the given JSON file. The
// file is loaded lazily on first lookup and cached.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Course returns the descriptor for a course id, or nil when the id is
// unknown.
func (p *FileProvider) Course(_ context.Context, id string) (*types.Course, error) {
	if id == "" {
		return nil, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		raw, err := os.ReadFile(p.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read course data %s: %w", p.path, err)
		}
		if err := json.Unmarshal(raw, &p.data); err != nil {
			return nil, fmt.Errorf("failed to parse course data %s: %w", p.path, err)
		}
		for courseID, c := range p.data {
			if c != nil && c.ID == "" {
				c.ID = courseID
			}
		}
	}
	return p.data[id], nil
}

// HTTPProvider fetches course descriptors from a metadata service.
type HTTPProvider struct {
	baseURL string
	client  *http.Client

	mu    sync.Mutex
	cache map[string]*types.Course
}

// NewHTTPProvider creates a provider fetching from baseURL.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{},
		cache:   make(map[string]*types.Course),
	}
}

// Course fetches the descriptor for a course id. Timeouts and transport
// failures return nil rather than an error so a flaky metadata service
// degrades to "no course" instead of failing the caller.
func (p *HTTPProvider) Course(ctx context.Context, id string) (*types.Course, error) {
	if id == "" {
		return nil, nil
	}
	p.mu.Lock()
	if cached, ok := p.cache[id]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/course-set/%s", p.baseURL, id), nil)
	if err != nil {
		return nil, nil
	}
	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("course: fetch %s: %v", id, err)
		return nil, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}
	c := &types.Course{}
	if err := json.NewDecoder(resp.Body).Decode(c); err != nil {
		return nil, nil
	}
	if c.ID == "" {
		c.ID = id
	}

	p.mu.Lock()
	p.cache[id] = c
	p.mu.Unlock()
	return c, nil
}
