package repo

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sentra-labs/installer/internal/manifest"
)

const (
	repositoryManifestName = "repoInfo.json"
	instanceManifestName   = "instanceInfo.json"

	// freshnessWindow is how long a fetched manifest is reused without a
	// network round trip.
	freshnessWindow = 60 * time.Second

	defaultTimeout = 20 * time.Second

	userAgent = "sentra-install"
)

// CachedState is the newest version state the client has seen for the
// configured instance. It only ever moves forward: a fetch that returns an
// older or equal identity leaves the previous state in place.
type CachedState struct {
	Identity  manifest.Identity
	Files     map[string]string
	Symlinks  map[string]bool
	FetchedAt time.Time
}

// Client talks to one update repository on behalf of one instance at a
// time. All methods are safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	instanceID  string
	repository  *manifest.Repository
	location    string
	instance    *manifest.Instance
	instanceRaw []byte
	lastChecked time.Time
	newest      *CachedState
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient.Timeout = d
	}
}

// New creates a Client for the given repository base URL and instance id.
// Only HTTPS base URLs are accepted; anything else is a configuration
// error caught here, once, before any network traffic.
func New(baseURL, instanceID string, opts ...Option) (*Client, error) {
	if !strings.HasPrefix(strings.ToLower(baseURL), "https://") {
		return nil, fmt.Errorf("%w: %s", ErrInsecureBaseURL, baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		instanceID: instanceID,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the repository base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// InstanceID returns the currently configured instance id.
func (c *Client) InstanceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instanceID
}

// SetInstance switches the client to another instance. All cached state,
// including the newest-version bookkeeping, belongs to the previous
// instance and is dropped immediately.
func (c *Client) SetInstance(instanceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instanceID = instanceID
	c.repository = nil
	c.location = ""
	c.instance = nil
	c.instanceRaw = nil
	c.lastChecked = time.Time{}
	c.newest = nil
}

// Repository returns the repository manifest, refetching it when the cache
// has expired.
func (c *Client) Repository() (*manifest.Repository, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.repository == nil || c.stale() {
		if err := c.fetchRepositoryLocked(); err != nil {
			return nil, err
		}
	}
	return c.repository, nil
}

// Instance returns the manifest of the configured instance, refetching it
// when the cache has expired.
func (c *Client) Instance() (*manifest.Instance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.instance == nil || c.stale() {
		if err := c.fetchInstanceLocked(); err != nil {
			return nil, err
		}
	}
	return c.instance, nil
}

// Newest returns the newest version state known for the configured
// instance, refreshing from the repository when the cache has expired.
func (c *Client) Newest() (*CachedState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.newest == nil || c.stale() {
		if err := c.fetchInstanceLocked(); err != nil {
			return nil, err
		}
	}
	return c.newest, nil
}

// InstanceDocument returns the raw bytes of the last fetched instance
// manifest, exactly as the repository served them.
func (c *Client) InstanceDocument() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instanceRaw
}

// OpenFile starts a streaming GET for a file of the configured instance.
// The caller must close the response body. The repository manifest is
// fetched first if the instance location is not known yet.
func (c *Client) OpenFile(relPath string) (*http.Response, error) {
	c.mu.Lock()
	if c.location == "" {
		if err := c.fetchRepositoryLocked(); err != nil {
			c.mu.Unlock()
			return nil, err
		}
		if c.location == "" {
			id := c.instanceID
			c.mu.Unlock()
			return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, id)
		}
	}
	url := c.baseURL + "/" + c.location + "/" + relPath
	c.mu.Unlock()

	return c.open(url)
}

// stale reports whether the freshness window has elapsed since the last
// successful instance refresh. Callers must hold c.mu.
func (c *Client) stale() bool {
	return time.Since(c.lastChecked) > freshnessWindow
}

// fetchRepositoryLocked downloads and parses repoInfo.json. Callers must
// hold c.mu.
func (c *Client) fetchRepositoryLocked() error {
	data, err := c.get(c.baseURL + "/" + repositoryManifestName)
	if err != nil {
		return err
	}

	repository, err := manifest.ParseRepository(data)
	if err != nil {
		return fmt.Errorf("repository manifest: %w", err)
	}

	c.repository = repository
	if ref, ok := repository.Instances[c.instanceID]; ok {
		c.location = ref.Location
	} else {
		c.location = ""
	}
	return nil
}

// fetchInstanceLocked downloads and parses the instance manifest, updating
// the newest-version state when the fetched identity is strictly newer than
// anything seen before. Callers must hold c.mu.
func (c *Client) fetchInstanceLocked() error {
	if c.repository == nil {
		if err := c.fetchRepositoryLocked(); err != nil {
			return err
		}
	}
	if c.location == "" {
		return fmt.Errorf("%w: %q", ErrUnknownInstance, c.instanceID)
	}

	data, err := c.get(c.baseURL + "/" + c.location + "/" + instanceManifestName)
	if err != nil {
		return err
	}

	inst, err := manifest.ParseInstance(data)
	if err != nil {
		return fmt.Errorf("instance manifest for %q: %w", c.instanceID, err)
	}

	c.instance = inst
	c.instanceRaw = data

	// Never let a late or repeated fetch regress the newest known state.
	if c.newest == nil || inst.Identity().Newer(c.newest.Identity) {
		c.newest = &CachedState{
			Identity:  inst.Identity(),
			Files:     inst.Files,
			Symlinks:  inst.SymlinkSet(),
			FetchedAt: time.Now(),
		}
	}

	c.lastChecked = time.Now()
	return nil
}

// get performs a whole-body GET.
func (c *Client) get(url string) ([]byte, error) {
	resp, err := c.open(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	return data, nil
}

// open performs a GET and checks the status, leaving the body open for
// streaming consumers.
func (c *Client) open(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}
