package davclient

import (
	"fmt"
	"time"

	"github.com/anhofer/libgroupdav/internal/caldata"
	"github.com/anhofer/libgroupdav/internal/carddata"
	"github.com/anhofer/libgroupdav/record"
)

// Listing filters narrow a collection listing to records matching one
// field. Results keep the server-returned order; an empty result is a
// valid outcome, not an error.

// TaskFilter is the fluent filter for to-do listings.
type TaskFilter interface {
	Status(status string) TaskFilter
	NotStatus(status string) TaskFilter
	Category(category string) TaskFilter
	Priority(priority int) TaskFilter
	Limit(limit int) TaskFilter
	Do() ([]record.Task, error)
}

// EventFilter is the fluent filter for event listings.
type EventFilter interface {
	TimeRange(start, end time.Time) EventFilter
	Status(status string) EventFilter
	Category(category string) EventFilter
	Limit(limit int) EventFilter
	Do() ([]record.Event, error)
}

// ContactFilter is the fluent filter for contact listings.
type ContactFilter interface {
	Organization(org string) ContactFilter
	Email(email string) ContactFilter
	Limit(limit int) ContactFilter
	Do() ([]record.Contact, error)
}

// ListTasks returns a filter over the collection's to-do items.
func (c *davClient) ListTasks(collection string) TaskFilter {
	return &taskFilter{client: c, collection: collection}
}

// ListEvents returns a filter over the collection's events.
func (c *davClient) ListEvents(collection string) EventFilter {
	return &eventFilter{client: c, collection: collection}
}

// ListContacts returns a filter over the address book's contacts.
func (c *davClient) ListContacts(collection string) ContactFilter {
	return &contactFilter{client: c, collection: collection}
}

type taskFilter struct {
	client     *davClient
	collection string
	status     string
	notStatus  string
	category   string
	priority   *int
	limit      int
}

func (f *taskFilter) Status(status string) TaskFilter {
	f.status = status
	return f
}

func (f *taskFilter) NotStatus(status string) TaskFilter {
	f.notStatus = status
	return f
}

func (f *taskFilter) Category(category string) TaskFilter {
	f.category = category
	return f
}

func (f *taskFilter) Priority(priority int) TaskFilter {
	f.priority = &priority
	return f
}

func (f *taskFilter) Limit(limit int) TaskFilter {
	f.limit = limit
	return f
}

func (f *taskFilter) Do() ([]record.Task, error) {
	query := newCalendarQuery("VTODO")
	inner := query.Filter.CompFilter.CompFilter

	var propFilters []propFilter
	if f.status != "" {
		propFilters = append(propFilters, propFilter{
			Name:      "STATUS",
			TextMatch: &textMatch{Text: f.status},
		})
	}
	if f.notStatus != "" {
		propFilters = append(propFilters, propFilter{
			Name: "STATUS",
			TextMatch: &textMatch{
				Text:            f.notStatus,
				NegateCondition: true,
			},
		})
	}
	if f.category != "" {
		propFilters = append(propFilters, propFilter{
			Name:      "CATEGORIES",
			TextMatch: &textMatch{Text: f.category},
		})
	}
	if f.priority != nil {
		propFilters = append(propFilters, propFilter{
			Name:      "PRIORITY",
			TextMatch: &textMatch{Text: fmt.Sprintf("%d", *f.priority)},
		})
	}
	inner.PropFilters = propFilters

	resp, err := f.client.httpClient.DoREPORT(f.client.calendarPath(f.collection), 1, query)
	if err != nil {
		return nil, wrapError(err)
	}

	// The query asks the server to filter, but not every implementation
	// honors text-match, so the equality check is applied again here.
	var tasks []record.Task
	for _, entry := range resp.Entries {
		if entry.Data == "" {
			continue
		}
		task, err := caldata.DecodeTask(entry.Data)
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		if f.status != "" && task.Status != f.status {
			continue
		}
		if f.notStatus != "" && task.Status == f.notStatus {
			continue
		}
		if f.category != "" && !hasCategory(task.Categories, f.category) {
			continue
		}
		if f.priority != nil && task.Priority != *f.priority {
			continue
		}
		tasks = append(tasks, *task)
	}

	if f.limit > 0 && len(tasks) > f.limit {
		tasks = tasks[:f.limit]
	}
	return tasks, nil
}

type eventFilter struct {
	client     *davClient
	collection string
	timeRange  *timeRange
	status     string
	category   string
	limit      int
}

func (f *eventFilter) TimeRange(start, end time.Time) EventFilter {
	f.timeRange = &timeRange{
		Start: start.UTC().Format("20060102T150405Z"),
		End:   end.UTC().Format("20060102T150405Z"),
	}
	return f
}

func (f *eventFilter) Status(status string) EventFilter {
	f.status = status
	return f
}

func (f *eventFilter) Category(category string) EventFilter {
	f.category = category
	return f
}

func (f *eventFilter) Limit(limit int) EventFilter {
	f.limit = limit
	return f
}

func (f *eventFilter) Do() ([]record.Event, error) {
	query := newCalendarQuery("VEVENT")
	inner := query.Filter.CompFilter.CompFilter
	inner.TimeRange = f.timeRange

	var propFilters []propFilter
	if f.status != "" {
		propFilters = append(propFilters, propFilter{
			Name:      "STATUS",
			TextMatch: &textMatch{Text: f.status},
		})
	}
	if f.category != "" {
		propFilters = append(propFilters, propFilter{
			Name:      "CATEGORIES",
			TextMatch: &textMatch{Text: f.category},
		})
	}
	inner.PropFilters = propFilters

	resp, err := f.client.httpClient.DoREPORT(f.client.calendarPath(f.collection), 1, query)
	if err != nil {
		return nil, wrapError(err)
	}

	var events []record.Event
	for _, entry := range resp.Entries {
		if entry.Data == "" {
			continue
		}
		event, err := caldata.DecodeEvent(entry.Data)
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		if f.status != "" && event.Status != f.status {
			continue
		}
		if f.category != "" && !hasCategory(event.Categories, f.category) {
			continue
		}
		events = append(events, *event)
	}

	if f.limit > 0 && len(events) > f.limit {
		events = events[:f.limit]
	}
	return events, nil
}

type contactFilter struct {
	client     *davClient
	collection string
	org        string
	email      string
	limit      int
}

func (f *contactFilter) Organization(org string) ContactFilter {
	f.org = org
	return f
}

func (f *contactFilter) Email(email string) ContactFilter {
	f.email = email
	return f
}

func (f *contactFilter) Limit(limit int) ContactFilter {
	f.limit = limit
	return f
}

func (f *contactFilter) Do() ([]record.Contact, error) {
	resp, err := f.client.httpClient.DoREPORT(f.client.addressbookPath(f.collection), 1, newAddressbookQuery())
	if err != nil {
		return nil, wrapError(err)
	}

	var contacts []record.Contact
	for _, entry := range resp.Entries {
		if entry.Data == "" {
			continue
		}
		contact, err := carddata.DecodeContact(entry.Data)
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		if f.org != "" && contact.Organization != f.org {
			continue
		}
		if f.email != "" && !hasEmail(contact, f.email) {
			continue
		}
		contacts = append(contacts, *contact)
	}

	if f.limit > 0 && len(contacts) > f.limit {
		contacts = contacts[:f.limit]
	}
	return contacts, nil
}

func hasCategory(categories []string, category string) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

func hasEmail(contact *record.Contact, email string) bool {
	for _, e := range contact.Emails {
		if e.Value == email {
			return true
		}
	}
	return false
}
