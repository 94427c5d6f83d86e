package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"
)

func TestSpreadsheetID(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0", "1AbC-d_9", false},
		{"1AbC-d_9", "1AbC-d_9", false},
		{"  1AbC  ", "1AbC", false},
		{"https://example.com/sheet", "", true},
		{"", "", true},
	}

	for _, tc := range testCases {
		got, err := SpreadsheetID(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("SpreadsheetID(%q): unexpected error state %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("SpreadsheetID(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), "",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestClient_Values(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v4/spreadsheets/SHEET/values/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"A1:R2","majorDimension":"ROWS","values":[["a","b",6],["c"]]}`))
	})

	rows, err := c.Values(context.Background(), "SHEET", "出品管理!A:R")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[0][2] != "6" || rows[1][0] != "c" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestClient_SheetNamesAndExport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/values:batchGet"):
			_, _ = w.Write([]byte(`{"valueRanges":[{"values":[["x"]]},{"values":[["y","z"]]}]}`))
		default:
			_, _ = w.Write([]byte(`{"sheets":[{"properties":{"title":"出品管理"}},{"properties":{"title":"在庫"}}]}`))
		}
	})

	names, err := c.SheetNames(context.Background(), "SHEET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "出品管理" {
		t.Errorf("unexpected sheet names: %v", names)
	}

	out, err := c.Export(context.Background(), "SHEET", names)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["在庫"][0][1] != "z" {
		t.Errorf("unexpected export: %v", out)
	}

	if _, err := c.Export(context.Background(), "SHEET", nil); err == nil {
		t.Error("expected error for empty sheet list")
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Bob's list"); got != "'Bob''s list'" {
		t.Errorf("unexpected quoting: %s", got)
	}
}
