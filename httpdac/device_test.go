package httpdac_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/baspi-lab/lnhrdac2/httpdac"
	"github.com/baspi-lab/lnhrdac2/httpdac/locker"
	"github.com/baspi-lab/lnhrdac2/lnhrdac2"
)

// scriptedDAC answers like an idle 12 channel unit; scripted queries
// are overridable, unknown actions succeed.
type scriptedDAC struct {
	replies map[string]string
}

func (s *scriptedDAC) Ask(cmd string) (string, error) {
	if r, ok := s.replies[cmd]; ok {
		return r, nil
	}
	if strings.Contains(cmd, "?") {
		return cmd, nil
	}
	return "0", nil
}

func testServer(t *testing.T, replies map[string]string) (*httptest.Server, *locker.Locker) {
	t.Helper()
	if replies == nil {
		replies = map[string]string{}
	}
	if _, ok := replies["all m?"]; !ok {
		modes := make([]string, 12)
		for i := range modes {
			modes[i] = "---"
		}
		replies["all m?"] = strings.Join(modes, ";")
	}
	d, err := lnhrdac2.NewWithConn(&scriptedDAC{replies: replies})
	if err != nil {
		t.Fatal(err)
	}
	h := httpdac.NewHTTPDevice(d)
	lock := locker.New()
	locker.Inject(h.RouteTable, lock)
	r := chi.NewRouter()
	r.Use(lock.Check)
	h.Bind(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, lock
}

func postJSON(t *testing.T, url string, v interface{}) *http.Response {
	t.Helper()
	buf, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestChannelVoltageOverHTTP(t *testing.T) {
	srv, _ := testServer(t, map[string]string{"3 v?": "FFFFFF"})

	resp := postJSON(t, srv.URL+"/channel/3/voltage", httpdac.FloatT{F64: 2.5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set returned %d", resp.StatusCode)
	}

	resp2, err := http.Get(srv.URL + "/channel/3/voltage")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	var f httpdac.FloatT
	if err := json.NewDecoder(resp2.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.F64 != 10.0 {
		t.Errorf("read back %v V", f.F64)
	}
}

func TestUnknownChannelIs404(t *testing.T) {
	srv, _ := testServer(t, nil)
	resp := postJSON(t, srv.URL+"/channel/99/voltage", httpdac.FloatT{F64: 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("got %d, expected 404", resp.StatusCode)
	}
}

func TestOutOfRangeVoltageIs400(t *testing.T) {
	srv, _ := testServer(t, nil)
	resp := postJSON(t, srv.URL+"/channel/1/voltage", httpdac.FloatT{F64: 42})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got %d, expected 400", resp.StatusCode)
	}
}

func TestLockerBlocksMutations(t *testing.T) {
	srv, _ := testServer(t, map[string]string{"1 v?": "800000"})

	resp := postJSON(t, srv.URL+"/lock", httpdac.BoolT{Bool: true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("locking returned %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/channel/1/voltage", httpdac.FloatT{F64: 1})
	if resp.StatusCode != http.StatusLocked {
		t.Errorf("mutation under lock returned %d, expected 423", resp.StatusCode)
	}

	// reads stay available
	resp2, err := http.Get(srv.URL + "/channel/1/voltage")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("read under lock returned %d", resp2.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/lock", httpdac.BoolT{Bool: false})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unlocking returned %d", resp.StatusCode)
	}
	resp = postJSON(t, srv.URL+"/channel/1/voltage", httpdac.FloatT{F64: 1})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("mutation after unlock returned %d", resp.StatusCode)
	}
}

func TestScanStateOverHTTP(t *testing.T) {
	srv, _ := testServer(t, nil)
	resp, err := http.Get(srv.URL + "/scan2d/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var s httpdac.StrT
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if s.Str != "unconfigured" {
		t.Errorf("state is %q", s.Str)
	}
}

func TestIDNOverHTTP(t *testing.T) {
	srv, _ := testServer(t, map[string]string{
		"hard?": strings.Repeat("x", 60),
		"soft?": strings.Repeat("y", 40),
	})
	resp, err := http.Get(srv.URL + "/idn")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var idn lnhrdac2.IDN
	if err := json.NewDecoder(resp.Body).Decode(&idn); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(idn.Model, "12 channel") {
		t.Errorf("model is %q", idn.Model)
	}
}
