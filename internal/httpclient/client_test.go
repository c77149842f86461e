package httpclient

import (
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multistatusBody = `<?xml version="1.0"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/calendars/alice/tasks/t1.ics</d:href>
    <d:propstat>
      <d:prop><d:getetag>"v1"</d:getetag></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

func newTestWrapper(t *testing.T, handler http.HandlerFunc) (HttpClientWrapper, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wrapper, err := NewHttpClientWrapper(server.Client(), *baseURL, logger)
	require.NoError(t, err)
	return wrapper, server
}

func TestDoPUTConditional(t *testing.T) {
	var gotIfMatch, gotContentType string
	wrapper, _ := newTestWrapper(t, func(w http.ResponseWriter, r *http.Request) {
		gotIfMatch = r.Header.Get("If-Match")
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("ETag", "\"v2\"")
		w.WriteHeader(http.StatusNoContent)
	})

	newEtag, err := wrapper.DoPUT("calendars/alice/tasks/t1.ics", "\"v1\"", "text/calendar; charset=utf-8", []byte("BEGIN:VCALENDAR"))
	require.NoError(t, err)
	assert.Equal(t, "\"v2\"", newEtag)
	assert.Equal(t, "\"v1\"", gotIfMatch)
	assert.Equal(t, "text/calendar; charset=utf-8", gotContentType)
}

func TestDoPUTUnconditional(t *testing.T) {
	sawIfMatch := false
	wrapper, _ := newTestWrapper(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawIfMatch = r.Header["If-Match"]
		w.WriteHeader(http.StatusCreated)
	})

	_, err := wrapper.DoPUT("calendars/alice/tasks/new.ics", "", "text/calendar; charset=utf-8", []byte("BEGIN:VCALENDAR"))
	require.NoError(t, err)
	assert.False(t, sawIfMatch, "an empty etag must not produce an If-Match header")
}

func TestDoPUTPreconditionFailed(t *testing.T) {
	wrapper, _ := newTestWrapper(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "precondition failed", http.StatusPreconditionFailed)
	})

	_, err := wrapper.DoPUT("calendars/alice/tasks/t1.ics", "\"stale\"", "text/calendar; charset=utf-8", nil)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusPreconditionFailed))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Contains(t, statusErr.Body, "precondition failed")
}

func TestDoDELETE(t *testing.T) {
	var gotIfMatch string
	wrapper, _ := newTestWrapper(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotIfMatch = r.Header.Get("If-Match")
		w.WriteHeader(http.StatusNoContent)
	})

	err := wrapper.DoDELETE("calendars/alice/tasks/t1.ics", "\"v1\"")
	require.NoError(t, err)
	assert.Equal(t, "\"v1\"", gotIfMatch)
}

func TestDoDELETEGone(t *testing.T) {
	wrapper, _ := newTestWrapper(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	err := wrapper.DoDELETE("calendars/alice/tasks/t1.ics", "\"v1\"")
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestDoPROPFIND(t *testing.T) {
	var gotMethod, gotDepth string
	var gotBody []byte
	wrapper, _ := newTestWrapper(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotDepth = r.Header.Get("Depth")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusMultiStatus)
		io.WriteString(w, multistatusBody)
	})

	resp, err := wrapper.DoPROPFIND("calendars/alice/tasks/", 1, "getetag", "getctag", "enabled")
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "\"v1\"", resp.Entries[0].Etag())

	assert.Equal(t, "PROPFIND", gotMethod)
	assert.Equal(t, "1", gotDepth)

	body := string(gotBody)
	assert.Contains(t, body, "<d:getetag/>")
	assert.Contains(t, body, "<cs:getctag/>")
	assert.Contains(t, body, `xmlns:cs="http://calendarserver.org/ns/"`)
	assert.Contains(t, body, `xmlns:oc="http://owncloud.org/ns"`)
}

func TestDoPROPFINDUnexpectedStatus(t *testing.T) {
	wrapper, _ := newTestWrapper(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	_, err := wrapper.DoPROPFIND("calendars/alice/tasks/", 0, "getetag")
	assert.True(t, IsStatus(err, http.StatusForbidden))
}

func TestDoREPORT(t *testing.T) {
	type testQuery struct {
		XMLName xml.Name `xml:"urn:ietf:params:xml:ns:caldav calendar-query"`
	}

	var gotMethod string
	var gotBody []byte
	wrapper, _ := newTestWrapper(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusMultiStatus)
		io.WriteString(w, multistatusBody)
	})

	resp, err := wrapper.DoREPORT("calendars/alice/tasks/", 1, testQuery{})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)

	assert.Equal(t, "REPORT", gotMethod)
	assert.Contains(t, string(gotBody), "calendar-query")
}

func TestNewHttpClientWrapperRequiresLogger(t *testing.T) {
	_, err := NewHttpClientWrapper(http.DefaultClient, url.URL{}, nil)
	require.Error(t, err)
}

func TestBasicAuthTransport(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
	}))
	defer server.Close()

	client := &http.Client{Transport: NewBasicAuthTransport("alice", "secret", nil, nil)}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.True(t, gotOK)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "secret", gotPass)
}

func TestBasicAuthTransportRequiresCredentials(t *testing.T) {
	client := &http.Client{Transport: NewBasicAuthTransport("", "", nil, nil)}
	_, err := client.Get("http://localhost/")
	require.Error(t, err)
}
