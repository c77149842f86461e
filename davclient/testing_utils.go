package davclient

import "github.com/anhofer/libgroupdav/internal/multistatus"

type mockPutResponse struct {
	etag string
	err  error
}

type putCall struct {
	url         string
	etag        string
	contentType string
	data        []byte
}

type deleteCall struct {
	url  string
	etag string
}

type reportCall struct {
	url   string
	query interface{}
}

// Mock types for testing
type mockHTTPClient struct {
	propfindResponse *multistatus.Response
	propfindErr      error
	reportResponse   *multistatus.Response
	reportErr        error
	putResponse      *mockPutResponse
	deleteResponse   error

	reportCalls []reportCall
	putCalls    []putCall
	deleteCalls []deleteCall
}

func (m *mockHTTPClient) DoPROPFIND(url string, depth int, props ...string) (*multistatus.Response, error) {
	if m.propfindErr != nil {
		return nil, m.propfindErr
	}
	if m.propfindResponse != nil {
		return m.propfindResponse, nil
	}
	return &multistatus.Response{}, nil
}

func (m *mockHTTPClient) DoREPORT(url string, depth int, query interface{}) (*multistatus.Response, error) {
	m.reportCalls = append(m.reportCalls, reportCall{url: url, query: query})
	if m.reportErr != nil {
		return nil, m.reportErr
	}
	if m.reportResponse != nil {
		return m.reportResponse, nil
	}
	return &multistatus.Response{}, nil
}

func (m *mockHTTPClient) DoPUT(url string, etag string, contentType string, data []byte) (string, error) {
	m.putCalls = append(m.putCalls, putCall{url: url, etag: etag, contentType: contentType, data: data})
	if m.putResponse != nil {
		return m.putResponse.etag, m.putResponse.err
	}
	return "new-etag", nil
}

func (m *mockHTTPClient) DoDELETE(url string, etag string) error {
	m.deleteCalls = append(m.deleteCalls, deleteCall{url: url, etag: etag})
	return m.deleteResponse
}

// objectResponse builds the multistatus a server would return for one
// stored object.
func objectResponse(href, etag, data string) *multistatus.Response {
	return &multistatus.Response{
		Entries: []multistatus.Entry{
			{
				Href:  href,
				Props: map[string]string{"getetag": etag},
				Data:  data,
			},
		},
	}
}
