package transport

import (
	"compress/flate"
	"compress/gzip"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/richard-senior/formscore/internal/logger"
)

var httpClient *http.Client

// CABundlePath optionally names a PEM bundle appended to the system roots (corporate proxies)
var CABundlePath string

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// GetCustomHTTPClient returns the shared client, building it on first use
func GetCustomHTTPClient() *http.Client {
	if httpClient != nil {
		return httpClient
	}
	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		logger.Warn("Failed to get system cert pool", err)
		rootCAs = x509.NewCertPool()
	}

	if CABundlePath != "" {
		pem, err := os.ReadFile(CABundlePath)
		if err != nil {
			logger.Warn("Proceeding without extra CA bundle", CABundlePath, err)
		} else if ok := rootCAs.AppendCertsFromPEM(pem); !ok {
			logger.Warn("Failed to append CA bundle", CABundlePath)
		} else {
			logger.Info("Added CA bundle to root CAs", CABundlePath)
		}
	}

	httpClient = &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: rootCAs},
			Proxy:           http.ProxyFromEnvironment,
		},
		Timeout: 60 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		},
	}
	return httpClient
}

// Get fetches url and returns the decoded body. accept is sent as the Accept header.
func Get(url string, accept string) ([]byte, error) {
	client := GetCustomHTTPClient()

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request for %s returned error status %d", url, resp.StatusCode)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return data, nil
}

// GetCSV fetches a CSV document
func GetCSV(url string) ([]byte, error) {
	return Get(url, "text/csv,text/plain;q=0.9,*/*;q=0.8")
}

// GetHtml fetches an HTML page
func GetHtml(url string) ([]byte, error) {
	return Get(url, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
}

// decodeBody wraps the response body according to its Content-Encoding
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch enc := resp.Header.Get("Content-Encoding"); enc {
	case "gzip":
		logger.Debug("Handling gzip compressed content")
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		logger.Debug("Handling deflate compressed content")
		return flate.NewReader(resp.Body), nil
	case "br":
		logger.Debug("Handling brotli compressed content")
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	default:
		logger.Warn("Unknown content encoding:", enc)
		return io.NopCloser(resp.Body), nil
	}
}
