// Package multistatus decodes DAV multistatus documents. Properties are
// resolved by (namespace URI, local name), never by the prefix the server
// happened to bind, so responses from different server implementations
// decode identically.
package multistatus

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

const (
	NamespaceDAV     = "DAV:"
	NamespaceCalDAV  = "urn:ietf:params:xml:ns:caldav"
	NamespaceCardDAV = "urn:ietf:params:xml:ns:carddav"
)

// ParseError reports a malformed multistatus document. It signals a server
// incompatibility, not a caller mistake.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed multistatus response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Entry is one response element: a resource location plus the properties
// reported with a success status.
type Entry struct {
	Href string

	// Props maps property local names to their text content.
	Props map[string]string

	// ResourceTypes holds the local names of the resourcetype children,
	// e.g. "collection", "calendar", "addressbook".
	ResourceTypes []string

	// Components holds the name attributes of a
	// supported-calendar-component-set property, e.g. "VEVENT", "VTODO".
	Components []string

	// Data is the embedded calendar-data or address-data body, if any.
	Data string
}

// Etag returns the entity tag reported for the entry, if any.
func (e *Entry) Etag() string {
	return e.Props["getetag"]
}

// Bool reads a boolean property. Absent properties default to true; only
// an explicit "0" or "false" reads as false.
func (e *Entry) Bool(name string) bool {
	v, ok := e.Props[name]
	if !ok {
		return true
	}
	v = strings.TrimSpace(v)
	return v != "0" && !strings.EqualFold(v, "false")
}

// HasResourceType reports whether the entry's resourcetype contains the
// given local name.
func (e *Entry) HasResourceType(local string) bool {
	for _, rt := range e.ResourceTypes {
		if rt == local {
			return true
		}
	}
	return false
}

// SupportsComponent reports whether the entry advertises the given
// calendar component kind.
func (e *Entry) SupportsComponent(name string) bool {
	for _, c := range e.Components {
		if c == name {
			return true
		}
	}
	return false
}

// Response is a decoded multistatus document.
type Response struct {
	Entries []Entry
}

// Parse decodes a multistatus body. An empty body is not an error; it
// decodes to zero entries.
func Parse(body []byte) (*Response, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return &Response{}, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, &ParseError{Err: err}
	}

	root := doc.Root()
	if root == nil {
		return &Response{}, nil
	}
	if root.Tag != "multistatus" || root.NamespaceURI() != NamespaceDAV {
		return nil, &ParseError{Err: fmt.Errorf("unexpected root element %q", root.Tag)}
	}

	resp := &Response{}
	for _, respEl := range root.ChildElements() {
		if respEl.Tag != "response" || respEl.NamespaceURI() != NamespaceDAV {
			continue
		}
		resp.Entries = append(resp.Entries, decodeEntry(respEl))
	}

	return resp, nil
}

func decodeEntry(respEl *etree.Element) Entry {
	entry := Entry{Props: make(map[string]string)}

	for _, child := range respEl.ChildElements() {
		if child.NamespaceURI() != NamespaceDAV {
			continue
		}
		switch child.Tag {
		case "href":
			entry.Href = strings.TrimSpace(child.Text())
		case "propstat":
			decodePropstat(child, &entry)
		}
	}

	return entry
}

func decodePropstat(propstatEl *etree.Element, entry *Entry) {
	var propEl *etree.Element
	status := ""
	for _, child := range propstatEl.ChildElements() {
		if child.NamespaceURI() != NamespaceDAV {
			continue
		}
		switch child.Tag {
		case "prop":
			propEl = child
		case "status":
			status = child.Text()
		}
	}

	// Propstats reporting 404 for absent properties carry no values.
	if propEl == nil || !strings.Contains(status, "200") {
		return
	}

	for _, prop := range propEl.ChildElements() {
		switch {
		case prop.Tag == "resourcetype" && prop.NamespaceURI() == NamespaceDAV:
			for _, rt := range prop.ChildElements() {
				entry.ResourceTypes = append(entry.ResourceTypes, rt.Tag)
			}
		case prop.Tag == "supported-calendar-component-set" && prop.NamespaceURI() == NamespaceCalDAV:
			for _, comp := range prop.ChildElements() {
				if name := comp.SelectAttrValue("name", ""); name != "" {
					entry.Components = append(entry.Components, name)
				}
			}
		case prop.Tag == "calendar-data" && prop.NamespaceURI() == NamespaceCalDAV:
			entry.Data = prop.Text()
		case prop.Tag == "address-data" && prop.NamespaceURI() == NamespaceCardDAV:
			entry.Data = prop.Text()
		default:
			entry.Props[prop.Tag] = strings.TrimSpace(prop.Text())
		}
	}
}
