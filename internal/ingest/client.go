package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"syscall"
	"time"

	"github.com/AngelCh415/stayreport/internal/utils"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client for remote sources. Unless allowPrivate is
// set, connections to loopback, private and link-local addresses are refused
// at dial time, after name resolution.
func NewHTTPClient(timeout time.Duration, allowPrivate bool) HTTPClient {
	if allowPrivate {
		return &http.Client{Timeout: timeout}
	}
	d := &net.Dialer{Timeout: timeout, Control: publicOnly}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = nil
	tr.DialContext = d.DialContext
	return &http.Client{Timeout: timeout, Transport: tr}
}

func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
	}
	return nil
}

var (
	// ErrSourceUnavailable is returned when a remote source cannot be fetched.
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrInvalidSourceURL  = errors.New("source url must be http or https")
	ErrPrivateAddress    = errors.New("source address is not public")
)

// Fetch downloads a remote file, retrying transport errors and 5xx answers.
// maxBytes <= 0 means no limit.
func Fetch(ctx context.Context, c HTTPClient, rawURL string, bo utils.Backoff, maxBytes int64) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSourceURL, rawURL)
	}

	var body []byte
	err = bo.Do(ctx, func(int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return utils.ErrPermanent{Err: err}
		}
		resp, err := c.Do(req)
		if err != nil {
			if errors.Is(err, ErrPrivateAddress) {
				return utils.ErrPermanent{Err: err}
			}
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// the upstream body never leaves this function
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("upstream answered %d", resp.StatusCode)
			if resp.StatusCode < 500 {
				return utils.ErrPermanent{Err: err}
			}
			return err
		}
		var r io.Reader = resp.Body
		if maxBytes > 0 {
			r = io.LimitReader(resp.Body, maxBytes+1)
		}
		body, err = io.ReadAll(r)
		if err != nil {
			return err
		}
		if maxBytes > 0 && int64(len(body)) > maxBytes {
			return utils.ErrPermanent{Err: fmt.Errorf("source larger than %d bytes", maxBytes)}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, rawURL, err)
	}
	return body, nil
}

// nameFromURL returns the last path element, used to pick a reader.
func nameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return path.Base(u.Path)
}
