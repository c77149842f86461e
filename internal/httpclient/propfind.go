package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/anhofer/libgroupdav/internal/multistatus"
	"github.com/beevik/etree"
)

// propfindName maps the property names callers may request to their
// (namespace, prefix) binding in the request body. The response side never
// depends on these prefixes; servers answer with whatever bindings they
// like and the multistatus decoder resolves them by namespace URI.
var propfindName = map[string]struct{ space, prefix string }{
	"resourcetype":                     {"DAV:", "d"},
	"displayname":                      {"DAV:", "d"},
	"getetag":                          {"DAV:", "d"},
	"sync-token":                       {"DAV:", "d"},
	"current-user-principal":           {"DAV:", "d"},
	"getctag":                          {"http://calendarserver.org/ns/", "cs"},
	"calendar-color":                   {"http://apple.com/ns/ical/", "ical"},
	"calendar-home-set":                {"urn:ietf:params:xml:ns:caldav", "cal"},
	"supported-calendar-component-set": {"urn:ietf:params:xml:ns:caldav", "cal"},
	"addressbook-home-set":             {"urn:ietf:params:xml:ns:carddav", "card"},
	"enabled":                          {"http://owncloud.org/ns", "oc"},
	"read-only":                        {"http://owncloud.org/ns", "oc"},
}

// DoPROPFIND performs a PROPFIND request and decodes the multistatus body.
func (c *httpClientWrapper) DoPROPFIND(urlStr string, depth int, props ...string) (*multistatus.Response, error) {
	c.logger.Debug("starting PROPFIND request",
		"url", urlStr,
		"depth", depth,
		"properties", props)

	body, err := buildPropfindXML(props...)
	if err != nil {
		return nil, fmt.Errorf("failed to build PROPFIND body: %w", err)
	}

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		c.logger.Debug("failed to resolve URL", "url", urlStr, "error", err)
		return nil, fmt.Errorf("failed to resolve URL %q: %w", urlStr, err)
	}

	req, err := http.NewRequest("PROPFIND", resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Depth", fmt.Sprintf("%d", depth))
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read PROPFIND response: %w", err)
	}

	if resp.StatusCode != http.StatusMultiStatus {
		c.logger.Debug("unexpected response status",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	result, err := multistatus.Parse(respBody)
	if err != nil {
		c.logger.Debug("failed to parse multistatus response", "error", err)
		return nil, err
	}

	c.logger.Debug("PROPFIND request complete", "entries", len(result.Entries))
	return result, nil
}

func buildPropfindXML(props ...string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("d:propfind")
	root.CreateAttr("xmlns:d", "DAV:")

	declared := map[string]bool{"d": true}
	prop := root.CreateElement("d:prop")
	for _, name := range props {
		binding, ok := propfindName[name]
		if !ok {
			continue
		}
		if !declared[binding.prefix] {
			root.CreateAttr("xmlns:"+binding.prefix, binding.space)
			declared[binding.prefix] = true
		}
		prop.CreateElement(binding.prefix + ":" + name)
	}

	return doc.WriteToBytes()
}
