package davclient

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/anhofer/libgroupdav/internal/multistatus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}

func taskData(uid, status string) string {
	return "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//Test//EN\r\n" +
		"BEGIN:VTODO\r\n" +
		"UID:" + uid + "\r\n" +
		"SUMMARY:Task " + uid + "\r\n" +
		"STATUS:" + status + "\r\n" +
		"END:VTODO\r\n" +
		"END:VCALENDAR\r\n"
}

func TestListTasksStatusFilter(t *testing.T) {
	mock := &mockHTTPClient{
		reportResponse: &multistatus.Response{
			Entries: []multistatus.Entry{
				{Href: "/t/1.ics", Props: map[string]string{"getetag": "\"1\""}, Data: taskData("t1", "NEEDS-ACTION")},
				{Href: "/t/2.ics", Props: map[string]string{"getetag": "\"2\""}, Data: taskData("t2", "COMPLETED")},
			},
		},
	}
	client := newTestClient(mock)

	tasks, err := client.ListTasks("tasks").Status("COMPLETED").Do()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t2", tasks[0].UID)

	// The filter also went to the server as a prop-filter on the query.
	require.Len(t, mock.reportCalls, 1)
	queryXML, err := xml.Marshal(mock.reportCalls[0].query)
	require.NoError(t, err)
	assert.Contains(t, string(queryXML), "COMPLETED")
	assert.Contains(t, string(queryXML), `name="STATUS"`)
	assert.Contains(t, string(queryXML), `name="VTODO"`)
}

func TestListTasksEmptyCollection(t *testing.T) {
	mock := &mockHTTPClient{}
	client := newTestClient(mock)

	tasks, err := client.ListTasks("tasks").Do()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestListTasksPreservesServerOrder(t *testing.T) {
	mock := &mockHTTPClient{
		reportResponse: &multistatus.Response{
			Entries: []multistatus.Entry{
				{Href: "/t/b.ics", Props: map[string]string{}, Data: taskData("zzz", "NEEDS-ACTION")},
				{Href: "/t/a.ics", Props: map[string]string{}, Data: taskData("aaa", "NEEDS-ACTION")},
			},
		},
	}
	client := newTestClient(mock)

	tasks, err := client.ListTasks("tasks").Do()
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "zzz", tasks[0].UID)
	assert.Equal(t, "aaa", tasks[1].UID)
}

func TestListTasksLimit(t *testing.T) {
	mock := &mockHTTPClient{
		reportResponse: &multistatus.Response{
			Entries: []multistatus.Entry{
				{Data: taskData("t1", "NEEDS-ACTION")},
				{Data: taskData("t2", "NEEDS-ACTION")},
				{Data: taskData("t3", "NEEDS-ACTION")},
			},
		},
	}
	client := newTestClient(mock)

	tasks, err := client.ListTasks("tasks").Limit(2).Do()
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestListEventsTimeRangeQuery(t *testing.T) {
	mock := &mockHTTPClient{}
	client := newTestClient(mock)

	_, err := client.ListEvents("personal").
		TimeRange(
			mustTime(t, "2024-04-01T00:00:00Z"),
			mustTime(t, "2024-05-01T00:00:00Z"),
		).Do()
	require.NoError(t, err)

	require.Len(t, mock.reportCalls, 1)
	queryXML, err := xml.Marshal(mock.reportCalls[0].query)
	require.NoError(t, err)
	assert.Contains(t, string(queryXML), `start="20240401T000000Z"`)
	assert.Contains(t, string(queryXML), `end="20240501T000000Z"`)
	assert.Contains(t, string(queryXML), `name="VEVENT"`)
}

func TestListContactsOrganizationFilter(t *testing.T) {
	mock := &mockHTTPClient{
		reportResponse: &multistatus.Response{
			Entries: []multistatus.Entry{
				{Data: strings.ReplaceAll(storedContact, "Navy", "Navy")},
				{Data: strings.ReplaceAll(strings.ReplaceAll(storedContact, "Navy", "Acme"), "contact-1", "contact-2")},
			},
		},
	}
	client := newTestClient(mock)

	contacts, err := client.ListContacts("contacts").Organization("Acme").Do()
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "contact-2", contacts[0].UID)
}
