// Package davclient exposes a groupware server's to-do lists, calendars
// and address books as typed operations under optimistic concurrency
// control.
package davclient

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/anhofer/libgroupdav/internal/httpclient"
	"github.com/anhofer/libgroupdav/record"
)

// DAVClient defines the groupware client operations.
type DAVClient interface {
	// Collections
	ListCalendars() ([]CollectionInfo, error)
	ListAddressBooks() ([]CollectionInfo, error)
	GetCalendarTag(collection string) (string, error)
	GetAddressBookTag(collection string) (string, error)

	// Tasks
	GetTask(collection, uid string) (*record.Task, bool, error)
	CreateTask(collection string, patch record.TaskPatch) (*CreatedObject, error)
	UpdateTask(collection, uid string, patch record.TaskPatch) (*MutationResult, error)
	CompleteTask(collection, uid string) (*MutationResult, error)
	ReopenTask(collection, uid string) (*MutationResult, error)
	DeleteTask(collection, uid string) (*MutationResult, error)
	ListTasks(collection string) TaskFilter

	// Events
	GetEvent(collection, uid string) (*record.Event, bool, error)
	CreateEvent(collection string, patch record.EventPatch) (*CreatedObject, error)
	UpdateEvent(collection, uid string, patch record.EventPatch) (*MutationResult, error)
	DeleteEvent(collection, uid string) (*MutationResult, error)
	ListEvents(collection string) EventFilter

	// Contacts
	GetContact(collection, uid string) (*record.Contact, bool, error)
	CreateContact(collection string, patch record.ContactPatch) (*CreatedObject, error)
	UpdateContact(collection, uid string, patch record.ContactPatch) (*MutationResult, error)
	DeleteContact(collection, uid string) (*MutationResult, error)
	ListContacts(collection string) ContactFilter
}

type davClient struct {
	httpClient httpclient.HttpClientWrapper
	username   string
}

// NewDAVClient creates a client for one account on a groupware server.
func NewDAVClient(httpClient httpclient.HttpClientWrapper, username string) DAVClient {
	return &davClient{
		httpClient: httpClient,
		username:   username,
	}
}

// Connect assembles a client from a DAV root URL and basic-auth
// credentials, e.g. "https://cloud.example.com/remote.php/dav/".
func Connect(serverURL, username, password string, logger *slog.Logger) (DAVClient, error) {
	base, err := url.Parse(serverURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", serverURL)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	transport := httpclient.NewBasicAuthTransport(username, password, nil, logger)
	wrapper, err := httpclient.NewHttpClientWrapper(&http.Client{Transport: transport}, *base, logger)
	if err != nil {
		return nil, err
	}

	return NewDAVClient(wrapper, username), nil
}

// Collection URLs follow the Nextcloud/ownCloud DAV layout relative to
// the DAV root; the transport resolves them against its base URL.

func (c *davClient) calendarPath(collection string) string {
	return fmt.Sprintf("calendars/%s/%s/", c.username, collection)
}

func (c *davClient) addressbookPath(collection string) string {
	return fmt.Sprintf("addressbooks/users/%s/%s/", c.username, collection)
}

const (
	calendarContentType = "text/calendar; charset=utf-8"
	vcardContentType    = "text/vcard; charset=utf-8"
)
