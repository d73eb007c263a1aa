package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestInstrumentClientDumpsMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "resty")
	out, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New()
	InstrumentClient(client, nil, out)

	res, err := client.R().
		SetFormData(map[string]string{"league": "EPL", "season": "2025"}).
		Post(server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	dumped, err := os.ReadFile(out.Path("1"))
	require.NoError(t, err)
	require.Contains(t, string(dumped), "POST "+server.URL)
	require.Contains(t, string(dumped), `{"ok":true}`)
}

func TestFormatHeadersSorted(t *testing.T) {
	headers := http.Header{}
	headers.Set("X-Requested-With", "XMLHttpRequest")
	headers.Set("Accept", "application/json")
	require.Equal(t, "Accept: application/json\nX-Requested-With: XMLHttpRequest", formatHeaders(headers))
	require.Equal(t, "", formatHeaders(http.Header{}))
}
