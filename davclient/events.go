package davclient

import (
	"fmt"

	"github.com/anhofer/libgroupdav/internal/caldata"
	"github.com/anhofer/libgroupdav/record"
	"github.com/google/uuid"
)

// GetEvent locates and decodes a single calendar event.
func (c *davClient) GetEvent(collection, uid string) (*record.Event, bool, error) {
	res, found, err := c.locateCalendarObject(collection, "VEVENT", uid)
	if err != nil || !found {
		return nil, false, err
	}

	event, err := caldata.DecodeEvent(res.raw)
	if err != nil {
		return nil, false, &ParseError{Err: err}
	}
	return event, true, nil
}

// CreateEvent writes a new event to the collection.
func (c *davClient) CreateEvent(collection string, patch record.EventPatch) (*CreatedObject, error) {
	uid := uuid.New().String()
	data, err := caldata.EncodeEvent("", uid, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return c.createObject(c.calendarPath(collection)+uid+".ics", uid, calendarContentType, []byte(data))
}

// UpdateEvent applies the patch to the stored event under optimistic
// concurrency control.
func (c *davClient) UpdateEvent(collection, uid string, patch record.EventPatch) (*MutationResult, error) {
	res, found, err := c.locateCalendarObject(collection, "VEVENT", uid)
	if err != nil {
		return nil, err
	}
	if !found {
		return notFoundResult(uid), nil
	}

	data, err := caldata.EncodeEvent(res.raw, uid, patch)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	newEtag, err := c.httpClient.DoPUT(res.href, res.etag, calendarContentType, []byte(data))
	return classifyWrite(StatusUpdated, res.href, res.etag, newEtag, err)
}

// DeleteEvent removes the event, concurrency-checked like UpdateEvent.
func (c *davClient) DeleteEvent(collection, uid string) (*MutationResult, error) {
	res, found, err := c.locateCalendarObject(collection, "VEVENT", uid)
	if err != nil {
		return nil, err
	}
	if !found {
		return notFoundResult(uid), nil
	}

	err = c.httpClient.DoDELETE(res.href, res.etag)
	return classifyWrite(StatusDeleted, res.href, res.etag, "", err)
}
