package davclient

import (
	"encoding/xml"

	"github.com/anhofer/libgroupdav/internal/caldata"
	"github.com/anhofer/libgroupdav/internal/carddata"
)

// resource is one located record: its server-assigned path, the
// concurrency token read alongside it, and the raw text representation.
// Nothing here is cached; every operation locates afresh.
type resource struct {
	href string
	etag string
	raw  string
}

// locateCalendarObject scans the collection for the record whose parsed
// identifier matches. A missing record is not an error.
func (c *davClient) locateCalendarObject(collection, compName, uid string) (resource, bool, error) {
	query := newCalendarQuery(compName)
	resp, err := c.httpClient.DoREPORT(c.calendarPath(collection), 1, query)
	if err != nil {
		return resource{}, false, wrapError(err)
	}

	for _, entry := range resp.Entries {
		if entry.Data == "" {
			continue
		}
		entryUID, err := caldata.ComponentUID(entry.Data, compName)
		if err != nil {
			return resource{}, false, &ParseError{Err: err}
		}
		if entryUID == uid {
			return resource{href: entry.Href, etag: entry.Etag(), raw: entry.Data}, true, nil
		}
	}

	return resource{}, false, nil
}

// locateContact is the address-book counterpart of locateCalendarObject.
func (c *davClient) locateContact(collection, uid string) (resource, bool, error) {
	resp, err := c.httpClient.DoREPORT(c.addressbookPath(collection), 1, newAddressbookQuery())
	if err != nil {
		return resource{}, false, wrapError(err)
	}

	for _, entry := range resp.Entries {
		if entry.Data == "" {
			continue
		}
		contact, err := carddata.DecodeContact(entry.Data)
		if err != nil {
			return resource{}, false, &ParseError{Err: err}
		}
		if contact.UID == uid {
			return resource{href: entry.Href, etag: entry.Etag(), raw: entry.Data}, true, nil
		}
	}

	return resource{}, false, nil
}

// XML structs for the filtered-query REPORT bodies. Request namespaces
// are fixed here; the response side resolves whatever bindings the server
// answers with.

type calendarQuery struct {
	XMLName xml.Name  `xml:"urn:ietf:params:xml:ns:caldav calendar-query"`
	Prop    queryProp `xml:"DAV: prop"`
	Filter  calFilter `xml:"urn:ietf:params:xml:ns:caldav filter"`
}

type addressbookQuery struct {
	XMLName xml.Name  `xml:"urn:ietf:params:xml:ns:carddav addressbook-query"`
	Prop    queryProp `xml:"DAV: prop"`
}

type queryProp struct {
	GetETag      *struct{} `xml:"DAV: getetag"`
	CalendarData *struct{} `xml:"urn:ietf:params:xml:ns:caldav calendar-data,omitempty"`
	AddressData  *struct{} `xml:"urn:ietf:params:xml:ns:carddav address-data,omitempty"`
}

type calFilter struct {
	CompFilter compFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter"`
}

type compFilter struct {
	Name        string       `xml:"name,attr"`
	TimeRange   *timeRange   `xml:"urn:ietf:params:xml:ns:caldav time-range,omitempty"`
	CompFilter  *compFilter  `xml:"urn:ietf:params:xml:ns:caldav comp-filter,omitempty"`
	PropFilters []propFilter `xml:"urn:ietf:params:xml:ns:caldav prop-filter,omitempty"`
}

type propFilter struct {
	Name      string     `xml:"name,attr"`
	TextMatch *textMatch `xml:"urn:ietf:params:xml:ns:caldav text-match,omitempty"`
}

type textMatch struct {
	Text            string `xml:",chardata"`
	NegateCondition bool   `xml:"negate-condition,attr,omitempty"`
}

type timeRange struct {
	Start string `xml:"start,attr"`
	End   string `xml:"end,attr"`
}

// newCalendarQuery builds a query scoped to one record kind, asking for
// each entry's etag and embedded text body.
func newCalendarQuery(compName string) *calendarQuery {
	return &calendarQuery{
		Prop: queryProp{
			GetETag:      &struct{}{},
			CalendarData: &struct{}{},
		},
		Filter: calFilter{
			CompFilter: compFilter{
				Name: "VCALENDAR",
				CompFilter: &compFilter{
					Name: compName,
				},
			},
		},
	}
}

func newAddressbookQuery() *addressbookQuery {
	return &addressbookQuery{
		Prop: queryProp{
			GetETag:     &struct{}{},
			AddressData: &struct{}{},
		},
	}
}
