package davclient

import (
	"fmt"
	"strings"

	"github.com/anhofer/libgroupdav/internal/multistatus"
)

// CollectionInfo describes one calendar or address book of the account.
type CollectionInfo struct {
	Path     string
	Name     string
	Color    string
	Enabled  bool
	ReadOnly bool // set on collections shared into the account without write access

	// Calendars only. Servers that omit the supported component set are
	// treated as supporting both kinds.
	SupportsTasks  bool
	SupportsEvents bool
}

// ListCalendars lists the account's calendar collections.
func (c *davClient) ListCalendars() ([]CollectionInfo, error) {
	resp, err := c.httpClient.DoPROPFIND("calendars/"+c.username+"/", 1,
		"resourcetype", "displayname", "calendar-color", "getctag",
		"supported-calendar-component-set", "enabled", "read-only")
	if err != nil {
		return nil, wrapError(err)
	}

	var collections []CollectionInfo
	for _, entry := range resp.Entries {
		if !entry.HasResourceType("calendar") {
			continue
		}
		info := CollectionInfo{
			Path:           entry.Href,
			Name:           entry.Props["displayname"],
			Color:          entry.Props["calendar-color"],
			Enabled:        entry.Bool("enabled"),
			ReadOnly:       readOnlyFlag(entry),
			SupportsTasks:  entry.SupportsComponent("VTODO"),
			SupportsEvents: entry.SupportsComponent("VEVENT"),
		}
		if len(entry.Components) == 0 {
			info.SupportsTasks = true
			info.SupportsEvents = true
		}
		collections = append(collections, info)
	}

	return collections, nil
}

// ListAddressBooks lists the account's address books.
func (c *davClient) ListAddressBooks() ([]CollectionInfo, error) {
	resp, err := c.httpClient.DoPROPFIND("addressbooks/users/"+c.username+"/", 1,
		"resourcetype", "displayname", "getctag", "enabled", "read-only")
	if err != nil {
		return nil, wrapError(err)
	}

	var collections []CollectionInfo
	for _, entry := range resp.Entries {
		if !entry.HasResourceType("addressbook") {
			continue
		}
		collections = append(collections, CollectionInfo{
			Path:     entry.Href,
			Name:     entry.Props["displayname"],
			Enabled:  entry.Bool("enabled"),
			ReadOnly: readOnlyFlag(entry),
		})
	}

	return collections, nil
}

// GetCalendarTag retrieves the calendar's change tag, for cheap "did
// anything change" checks between listings.
func (c *davClient) GetCalendarTag(collection string) (string, error) {
	return c.collectionTag(c.calendarPath(collection))
}

// GetAddressBookTag is the address-book counterpart of GetCalendarTag.
func (c *davClient) GetAddressBookTag(collection string) (string, error) {
	return c.collectionTag(c.addressbookPath(collection))
}

func (c *davClient) collectionTag(path string) (string, error) {
	resp, err := c.httpClient.DoPROPFIND(path, 0, "getctag", "getetag")
	if err != nil {
		return "", wrapError(err)
	}

	for _, entry := range resp.Entries {
		if tag := entry.Props["getctag"]; tag != "" {
			return tag, nil
		}
		if tag := entry.Etag(); tag != "" {
			return tag, nil
		}
	}

	return "", fmt.Errorf("no change tag found at %s", path)
}

// readOnlyFlag uses the opposite default of enabled: a collection is
// writable unless the server says otherwise.
func readOnlyFlag(entry multistatus.Entry) bool {
	v := strings.TrimSpace(entry.Props["read-only"])
	return v == "1" || strings.EqualFold(v, "true")
}
