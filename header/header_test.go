package header

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestValueIsCaseInsensitive(t *testing.T) {
	f := Fields{{"content-type", "text/plain"}}
	if val, ok := f.Value("Content-Type"); !ok || val != "text/plain" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
	if _, ok := f.Value("Date"); ok {
		t.Fatal("Date should be absent")
	}
}

func TestValueCombinesRepeatedFields(t *testing.T) {
	f := Fields{{"Vary", "Cookie"}, {"X-Other", "1"}, {"vary", "Accept-Encoding"}}
	if val, _ := f.Value("VARY"); val != "Cookie, Accept-Encoding" {
		t.Fatalf("Combined value is '%s'", val)
	}
}

func TestEmptyValueIsPresent(t *testing.T) {
	f := Fields{{"Pragma", ""}}
	if val, ok := f.Value("pragma"); !ok || val != "" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
}

func TestFromHTTPIsSorted(t *testing.T) {
	h := http.Header{}
	h.Add("X-B", "2")
	h.Add("X-A", "1")
	h.Add("X-B", "3")
	f := FromHTTP(h)
	want := Fields{{"X-A", "1"}, {"X-B", "2"}, {"X-B", "3"}}
	if len(f) != len(want) {
		t.Fatalf("Fields are %v", f)
	}
	for i := range want {
		if f[i] != want[i] {
			t.Fatalf("Field %d is %v, expected %v", i, f[i], want[i])
		}
	}
	if back := f.HTTP(); len(back.Values("X-B")) != 2 {
		t.Fatalf("Round trip header is %v", back)
	}
}

func TestList(t *testing.T) {
	list := LowerList(" Cookie,, Accept-Encoding ,")
	if len(list) != 2 || list[0] != "cookie" || list[1] != "accept-encoding" {
		t.Fatalf("List is %v", list)
	}
}

func TestParseCacheControl(t *testing.T) {
	cc := ParseCacheControl("public, Max-Age=60 ,s-maxage = 600, no-transform")
	if val, ok := cc.Get("public"); !ok || val != "" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
	if val, ok := cc.Get("max-age"); !ok || val != "60" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
	if val, ok := cc.Get("s-maxage"); !ok || val != "600" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
	if _, hasArg := cc.Argument("public"); hasArg {
		t.Fatal("public should not have an argument")
	}
	if len(cc.directives) != 4 {
		t.Fatalf("Directive count is %d", len(cc.directives))
	}
}

func TestParseCacheControlEmpty(t *testing.T) {
	for _, value := range []string{"", " , ,", "=5"} {
		if cc := ParseCacheControl(value); len(cc.directives) != 0 {
			t.Fatalf("'%s' parsed into %d directives", value, len(cc.directives))
		}
	}
}

func TestMaxAge(t *testing.T) {
	tests := []struct {
		value   string
		seconds int64
		present bool
		invalid bool
	}{
		{"max-age=60", 60, true, false},
		{"max-age=0", 0, true, false},
		{"public", 0, false, false},
		{"max-age", 0, true, true},
		{"max-age=abc", 0, true, true},
		{`max-age="60"`, 0, true, true},
		{"max-age=60, max-age=60", 60, true, false},
		{"max-age=60, max-age=0", 0, true, true},
		{"max-age=60, Max-Age=abc", 0, true, true},
		{"max-age=60, max-age", 0, true, true},
	}
	for _, test := range tests {
		seconds, present, err := ParseCacheControl(test.value).MaxAge()
		if present != test.present || (err != nil) != test.invalid {
			t.Fatalf("%s: present %v, err %v", test.value, present, err)
		}
		if !test.invalid && seconds != test.seconds {
			t.Fatalf("%s: seconds %d", test.value, seconds)
		}
	}
}

func TestConflictingMaxAge(t *testing.T) {
	_, _, err := ParseCacheControl("public, max-age=60, private, max-age=0").MaxAge()
	if !errors.Is(err, ErrConflictingDirective) {
		t.Fatalf("Error is %v", err)
	}
	// the first argument is still reported
	if val, _ := ParseCacheControl("max-age=60, max-age=0").Get("max-age"); val != "60" {
		t.Fatalf("max-age is '%s'", val)
	}
}

func TestParseHTTPDate(t *testing.T) {
	want := time.Date(1994, time.November, 6, 8, 49, 37, 0, time.UTC)
	for _, value := range []string{
		"Sun, 06 Nov 1994 08:49:37 GMT",
		"Sunday, 06-Nov-94 08:49:37 GMT",
		"Sun Nov  6 08:49:37 1994",
		"Sun, 06 Nov 1994 09:49:37 +0100",
		"Sun, 6 Nov 1994 08:49:37 GMT",
	} {
		date, err := ParseHTTPDate(value)
		if err != nil {
			t.Fatalf("%s: %v", value, err)
		}
		if !date.Equal(want) {
			t.Fatalf("%s parsed as %v", value, date)
		}
		if date.Location() != time.UTC {
			t.Fatalf("%s not in UTC", value)
		}
	}
}

func TestParseHTTPDateInvalid(t *testing.T) {
	for _, value := range []string{"", "0", "yesterday", "Sun, 06 Nov 1994"} {
		if _, err := ParseHTTPDate(value); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%s: error is %v", value, err)
		}
	}
}

func TestFormatHTTPDate(t *testing.T) {
	date := time.Date(1994, time.November, 6, 8, 49, 37, 0, time.UTC)
	if s := FormatHTTPDate(date); s != "Sun, 06 Nov 1994 08:49:37 GMT" {
		t.Fatalf("Formatted date is %s", s)
	}
}

func TestEndToEnd(t *testing.T) {
	f := Fields{
		{"Content-Type", "text/html"},
		{"Connection", "close, X-Hop"},
		{"Keep-Alive", "timeout=5"},
		{"x-hop", "secret"},
		{"Transfer-Encoding", "chunked"},
		{"Set-Cookie", "a=1"},
		{"Proxy-Authenticate", "Basic"},
		{"set-cookie", "b=2"},
	}
	e2e := EndToEnd(f)
	want := Fields{{"Content-Type", "text/html"}, {"Set-Cookie", "a=1, b=2"}}
	if len(e2e) != len(want) {
		t.Fatalf("End-to-end fields are %v", e2e)
	}
	for i := range want {
		if e2e[i] != want[i] {
			t.Fatalf("Field %d is %v, expected %v", i, e2e[i], want[i])
		}
	}
}

func TestIsHopByHop(t *testing.T) {
	if !IsHopByHop("Transfer-Encoding") || !IsHopByHop("KEEP-ALIVE") || IsHopByHop("Content-Length") {
		t.Fatal("Wrong hop-by-hop classification")
	}
}
