package httpclient

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/anhofer/libgroupdav/internal/multistatus"
)

// DoREPORT executes a CalDAV/CardDAV REPORT request. The query is any
// value that marshals to the report's XML body (calendar-query,
// addressbook-query).
func (c *httpClientWrapper) DoREPORT(urlStr string, depth int, query interface{}) (*multistatus.Response, error) {
	c.logger.Debug("starting REPORT request",
		"url", urlStr,
		"depth", depth,
		"query_type", fmt.Sprintf("%T", query))

	queryXML, err := xml.Marshal(query)
	if err != nil {
		c.logger.Debug("failed to marshal query", "error", err)
		return nil, fmt.Errorf("failed to marshal REPORT query: %w", err)
	}

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		c.logger.Debug("failed to resolve URL", "url", urlStr, "error", err)
		return nil, fmt.Errorf("failed to resolve URL %q: %w", urlStr, err)
	}

	req, err := http.NewRequest("REPORT", resolvedURL.String(), bytes.NewReader(queryXML))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("Depth", fmt.Sprintf("%d", depth))

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	c.logger.Debug("received response", "status", resp.Status)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read REPORT response: %w", err)
	}

	if resp.StatusCode != http.StatusMultiStatus {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	result, err := multistatus.Parse(respBody)
	if err != nil {
		c.logger.Debug("failed to decode response", "error", err)
		return nil, err
	}

	c.logger.Debug("REPORT request complete", "entries", len(result.Entries))
	return result, nil
}
