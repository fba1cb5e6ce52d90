package updater

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/sentra-labs/installer/internal/repo"
)

// DefaultMaxRedirections bounds the symlink-marker chain a single fetch may
// follow before the repository is considered malformed.
const DefaultMaxRedirections = 10

// fetchChunkSize is the read granularity used for progress accounting.
const fetchChunkSize = 4096

// FileSource opens a streaming download of one instance file. It is
// implemented by *repo.Client.
type FileSource interface {
	OpenFile(relPath string) (*http.Response, error)
}

// Fetcher downloads instance files into private in-memory buffers,
// resolving symlink-marker indirection and verifying the final content
// digest before anything is handed to the applier.
type Fetcher struct {
	source          FileSource
	symlinks        map[string]bool
	maxRedirections int
	progress        io.Writer // nil disables progress output
}

// NewFetcher creates a Fetcher. symlinks is the manifest's marker set;
// progress may be nil.
func NewFetcher(source FileSource, symlinks map[string]bool, progress io.Writer) *Fetcher {
	return &Fetcher{
		source:          source,
		symlinks:        symlinks,
		maxRedirections: DefaultMaxRedirections,
		progress:        progress,
	}
}

// Fetch downloads relPath and returns its content once the digest matches
// expectedDigest. A path listed as a symlink marker does not contain the
// real file: its first line names the actual target, relative to the
// marker's directory, and the fetch is re-issued there. Chains longer than
// the redirection bound fail with ErrTooManyRedirections.
func (f *Fetcher) Fetch(relPath, expectedDigest string) ([]byte, error) {
	hops := 0
	current := relPath

	for {
		content, err := f.download(current)
		if err != nil {
			return nil, err
		}

		if !f.symlinks[current] {
			if err := VerifyBytes(content, expectedDigest); err != nil {
				return nil, fmt.Errorf("%s: %w", relPath, err)
			}
			return content, nil
		}

		hops++
		if hops > f.maxRedirections {
			return nil, fmt.Errorf("%w: %s exceeded %d hops", ErrTooManyRedirections, relPath, f.maxRedirections)
		}

		target, err := resolveMarker(current, content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", relPath, err)
		}
		current = target
	}
}

// download streams one file into memory, reporting coarse progress in 10%
// steps when the response carries a usable size hint. A hint that turns
// out to be inconsistent with the stream silences progress for the rest of
// the transfer without failing it.
func (f *Fetcher) download(relPath string) ([]byte, error) {
	resp, err := f.source.OpenFile(relPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	showProgress := f.progress != nil && resp.ContentLength > 0
	total := resp.ContentLength

	var buf bytes.Buffer
	chunk := make([]byte, fetchChunkSize)
	printed := int64(0)

	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])

			if showProgress {
				if int64(buf.Len()) > total {
					// The size hint lied; keep transferring silently.
					showProgress = false
				} else if tenth := int64(buf.Len()) * 10 / total; tenth > printed {
					printed = tenth
					fmt.Fprintf(f.progress, "%s: %d%%\n", relPath, printed*10)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, &repo.TransportError{URL: relPath, Err: readErr}
		}
	}

	return buf.Bytes(), nil
}

// resolveMarker interprets marker content: a single line naming the real
// target, relative to the marker's own directory. Targets that are empty
// or escape the instance root are rejected as malformed repository data.
func resolveMarker(markerPath string, content []byte) (string, error) {
	line, err := bufio.NewReader(bytes.NewReader(content)).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading symlink marker: %w", err)
	}

	target := strings.TrimSpace(line)
	if target == "" {
		return "", fmt.Errorf("symlink marker %s is empty", markerPath)
	}
	if path.IsAbs(target) {
		return "", fmt.Errorf("symlink marker %s names an absolute target", markerPath)
	}

	resolved := path.Join(path.Dir(markerPath), target)
	if resolved == ".." || strings.HasPrefix(resolved, "../") {
		return "", fmt.Errorf("symlink marker %s escapes the instance root", markerPath)
	}
	return resolved, nil
}
