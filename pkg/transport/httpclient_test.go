package transport

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = "Date,Season,home,visitor,result\n1888-09-08,1888,Bolton Wanderers,Derby County,A\n"

func server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plain.csv":
			w.Write([]byte(body))
		case "/gzip.csv":
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			zw.Write([]byte(body))
			zw.Close()
			w.Header().Set("Content-Encoding", "gzip")
			w.Write(buf.Bytes())
		case "/br.csv":
			var buf bytes.Buffer
			bw := brotli.NewWriter(&buf)
			bw.Write([]byte(body))
			bw.Close()
			w.Header().Set("Content-Encoding", "br")
			w.Write(buf.Bytes())
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetDecodesBodies(t *testing.T) {
	srv := server(t)
	for _, path := range []string{"/plain.csv", "/gzip.csv", "/br.csv"} {
		t.Run(path, func(t *testing.T) {
			data, err := GetCSV(srv.URL + path)
			require.NoError(t, err)
			assert.Equal(t, body, string(data))
		})
	}
}

func TestGetReportsStatus(t *testing.T) {
	srv := server(t)
	_, err := GetHtml(srv.URL + "/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
