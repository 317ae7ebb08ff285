package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3MockForTests returns an *S3 backed by an in-memory fake HTTP transport.
// Only the subset of S3 operations required by the Store interface is
// implemented.
func NewS3MockForTests() *S3 {
	rt := &mockRoundTripper{state: make(map[string]mockObject)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return &S3{client: client, bucket: "mock-bucket", presign: s3.NewPresignClient(client)}
}

type mockRoundTripper struct{ state map[string]mockObject }

type mockObject struct {
	body        []byte
	contentType string
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		return m.listResponse(req.URL.Query().Get("prefix")), nil
	}
	switch req.Method {
	case http.MethodHead:
		if obj, ok := m.state[key]; ok {
			return mockResponse(http.StatusOK, nil, http.Header{
				"Content-Length": {fmt.Sprintf("%d", len(obj.body))},
				"Content-Type":   {obj.contentType},
				"ETag":           {"\"etag\""},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			}), nil
		}
		return mockResponse(http.StatusNotFound, nil, http.Header{}), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeAWSChunked(body); ok {
			body = dec
		}
		if _, exists := m.state[key]; !exists {
			m.state[key] = mockObject{body: body, contentType: req.Header.Get("Content-Type")}
		}
		return mockResponse(http.StatusOK, nil, http.Header{"ETag": {"\"etag\""}}), nil
	case http.MethodGet:
		if obj, ok := m.state[key]; ok {
			return mockResponse(http.StatusOK, obj.body, http.Header{
				"Content-Length": {fmt.Sprintf("%d", len(obj.body))},
				"Content-Type":   {obj.contentType},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
				"ETag":           {"\"etag\""},
			}), nil
		}
		return mockResponse(http.StatusNotFound, nil, http.Header{}), nil
	case http.MethodDelete:
		delete(m.state, key)
		return mockResponse(http.StatusNoContent, nil, http.Header{}), nil
	}
	return mockResponse(http.StatusNotImplemented, nil, http.Header{}), nil
}

func (m *mockRoundTripper) listResponse(prefix string) *http.Response {
	var keys []string
	for k := range m.state {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\"?><ListBucketResult><IsTruncated>false</IsTruncated>")
	for _, k := range keys {
		obj := m.state[k]
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(obj.body))
	}
	b.WriteString("</ListBucketResult>")
	return mockResponse(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}})
}

func mockResponse(code int, body []byte, h http.Header) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(bytes.NewReader(body)), Header: h}
}

// decodeAWSChunked decodes a minimal single-chunk aws-chunked payload:
// <hex>\r\n<body>\r\n0\r\n...
func decodeAWSChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	sz, err := parseHexSize(parts[0])
	if err != nil || int64(len(parts[1])) != sz || parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}

func parseHexSize(h string) (int64, error) {
	var v int64
	for _, c := range h {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v += int64(c - '0')
		case c >= 'a' && c <= 'f':
			v += int64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v += int64(c-'A') + 10
		default:
			return 0, fmt.Errorf("invalid hex")
		}
	}
	return v, nil
}
