package davclient

import (
	"fmt"

	"github.com/anhofer/libgroupdav/internal/carddata"
	"github.com/anhofer/libgroupdav/record"
	"github.com/google/uuid"
)

// GetContact locates and decodes a single contact.
func (c *davClient) GetContact(collection, uid string) (*record.Contact, bool, error) {
	res, found, err := c.locateContact(collection, uid)
	if err != nil || !found {
		return nil, false, err
	}

	contact, err := carddata.DecodeContact(res.raw)
	if err != nil {
		return nil, false, &ParseError{Err: err}
	}
	return contact, true, nil
}

// CreateContact writes a new contact to the address book.
func (c *davClient) CreateContact(collection string, patch record.ContactPatch) (*CreatedObject, error) {
	uid := uuid.New().String()
	data, err := carddata.EncodeContact("", uid, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode contact: %w", err)
	}
	return c.createObject(c.addressbookPath(collection)+uid+".vcf", uid, vcardContentType, []byte(data))
}

// UpdateContact applies the patch to the stored contact under optimistic
// concurrency control.
func (c *davClient) UpdateContact(collection, uid string, patch record.ContactPatch) (*MutationResult, error) {
	res, found, err := c.locateContact(collection, uid)
	if err != nil {
		return nil, err
	}
	if !found {
		return notFoundResult(uid), nil
	}

	data, err := carddata.EncodeContact(res.raw, uid, patch)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	newEtag, err := c.httpClient.DoPUT(res.href, res.etag, vcardContentType, []byte(data))
	return classifyWrite(StatusUpdated, res.href, res.etag, newEtag, err)
}

// DeleteContact removes the contact, concurrency-checked like
// UpdateContact.
func (c *davClient) DeleteContact(collection, uid string) (*MutationResult, error) {
	res, found, err := c.locateContact(collection, uid)
	if err != nil {
		return nil, err
	}
	if !found {
		return notFoundResult(uid), nil
	}

	err = c.httpClient.DoDELETE(res.href, res.etag)
	return classifyWrite(StatusDeleted, res.href, res.etag, "", err)
}
