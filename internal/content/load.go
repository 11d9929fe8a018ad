package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
)

// maxContentSize caps how much of a fetched body is read.
const maxContentSize = 1 << 20

// ErrContentTooLarge is returned when a fetched body exceeds maxContentSize.
var ErrContentTooLarge = errors.New("content too large")

// FetchError reports a non-2xx response while fetching content.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load content from %s: %s", e.URL, e.Status)
}

// LoadFile reads the raw content text from disk.
func LoadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read content file: %w", err)
	}
	return string(b), nil
}

// Fetch downloads the raw content text. A nil client uses http.DefaultClient.
func Fetch(ctx context.Context, client *http.Client, url string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build content request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to load content from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read content body: %w", err)
	}
	if len(b) > maxContentSize {
		return "", fmt.Errorf("failed to load content from %s: %w", url, ErrContentTooLarge)
	}
	return string(b), nil
}
