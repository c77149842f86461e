package davclient

import (
	"fmt"
	"time"

	"github.com/anhofer/libgroupdav/internal/caldata"
	"github.com/anhofer/libgroupdav/record"
	"github.com/google/uuid"
)

// GetTask locates and decodes a single to-do item. The second return
// value reports whether the identifier exists in the collection.
func (c *davClient) GetTask(collection, uid string) (*record.Task, bool, error) {
	res, found, err := c.locateCalendarObject(collection, "VTODO", uid)
	if err != nil || !found {
		return nil, false, err
	}

	task, err := caldata.DecodeTask(res.raw)
	if err != nil {
		return nil, false, &ParseError{Err: err}
	}
	return task, true, nil
}

// CreateTask writes a new to-do item to the collection and returns its
// location and entity tag.
func (c *davClient) CreateTask(collection string, patch record.TaskPatch) (*CreatedObject, error) {
	uid := uuid.New().String()
	data, err := caldata.EncodeTask("", uid, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task: %w", err)
	}
	return c.createObject(c.calendarPath(collection)+uid+".ics", uid, calendarContentType, []byte(data))
}

// createObject performs the unconditional create write. When the server
// omits the etag from the PUT response it is fetched again, so the caller
// holds a usable concurrency token from the start.
func (c *davClient) createObject(href, uid, contentType string, data []byte) (*CreatedObject, error) {
	etag, err := c.httpClient.DoPUT(href, "", contentType, data)
	if err != nil {
		return nil, wrapError(err)
	}

	if etag == "" {
		resp, err := c.httpClient.DoPROPFIND(href, 0, "getetag")
		if err != nil {
			return nil, fmt.Errorf("failed to get new etag: %w", wrapError(err))
		}
		for _, entry := range resp.Entries {
			if entry.Etag() != "" {
				etag = entry.Etag()
				break
			}
		}
		if etag == "" {
			return nil, fmt.Errorf("no etag found for created object")
		}
	}

	return &CreatedObject{UID: uid, Href: href, Etag: etag}, nil
}

// UpdateTask applies the patch to the stored to-do under optimistic
// concurrency control: the write carries the etag read during locate and
// the server rejects it with Conflict if another editor got there first.
func (c *davClient) UpdateTask(collection, uid string, patch record.TaskPatch) (*MutationResult, error) {
	res, found, err := c.locateCalendarObject(collection, "VTODO", uid)
	if err != nil {
		return nil, err
	}
	if !found {
		return notFoundResult(uid), nil
	}

	data, err := caldata.EncodeTask(res.raw, uid, patch)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	newEtag, err := c.httpClient.DoPUT(res.href, res.etag, calendarContentType, []byte(data))
	return classifyWrite(StatusUpdated, res.href, res.etag, newEtag, err)
}

// CompleteTask marks the to-do done. Status, percent-complete and the
// completion timestamp change together in one write.
func (c *davClient) CompleteTask(collection, uid string) (*MutationResult, error) {
	return c.setTaskCompletion(collection, uid, true)
}

// ReopenTask reverses CompleteTask, clearing the completion timestamp and
// resetting percent-complete.
func (c *davClient) ReopenTask(collection, uid string) (*MutationResult, error) {
	return c.setTaskCompletion(collection, uid, false)
}

func (c *davClient) setTaskCompletion(collection, uid string, done bool) (*MutationResult, error) {
	res, found, err := c.locateCalendarObject(collection, "VTODO", uid)
	if err != nil {
		return nil, err
	}
	if !found {
		return notFoundResult(uid), nil
	}

	data, err := caldata.SetTaskCompletion(res.raw, done, time.Now())
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	newEtag, err := c.httpClient.DoPUT(res.href, res.etag, calendarContentType, []byte(data))
	return classifyWrite(StatusUpdated, res.href, res.etag, newEtag, err)
}

// DeleteTask removes the to-do, still under concurrency control: a
// concurrent edit since locate surfaces as Conflict rather than deleting
// a version the caller never saw.
func (c *davClient) DeleteTask(collection, uid string) (*MutationResult, error) {
	res, found, err := c.locateCalendarObject(collection, "VTODO", uid)
	if err != nil {
		return nil, err
	}
	if !found {
		return notFoundResult(uid), nil
	}

	err = c.httpClient.DoDELETE(res.href, res.etag)
	return classifyWrite(StatusDeleted, res.href, res.etag, "", err)
}
