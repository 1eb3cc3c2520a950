package pdf

import (
	"bytes"
	"strings"
	"testing"
)

func TestBytesProducesWellFormedDocument(t *testing.T) {
	t.Parallel()
	d := New()
	d.Heading("Data Analysis Report")
	d.Text("A short paragraph of body text.")
	d.Table([]string{"Metric", "Value"}, [][]string{{"Total Records", "42"}})

	out := d.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-1.4")) {
		t.Fatal("missing PDF header")
	}
	if !bytes.HasSuffix(out, []byte("%%EOF\n")) {
		t.Fatal("missing EOF marker")
	}
	for _, want := range []string{"/Type /Catalog", "/Type /Pages", "/Type /Page ", "xref", "trailer", "Helvetica"} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("output missing %q", want)
		}
	}
	if !strings.Contains(string(out), "(Data Analysis Report)") {
		t.Fatal("heading text not embedded")
	}
}

func TestLongTextBreaksPages(t *testing.T) {
	t.Parallel()
	d := New()
	for i := 0; i < 200; i++ {
		d.Text("line of filler text that occupies one row on the page")
	}
	out := string(d.Bytes())
	if n := strings.Count(out, "/Type /Page "); n < 2 {
		t.Fatalf("expected multiple pages, got %d", n)
	}
}

func TestEscape(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"plain", "plain"},
		{"a(b)c", `a\(b\)c`},
		{`back\slash`, `back\\slash`},
		{"报告", "??"},
		{"tab\there", "tab here"},
	}
	for _, tc := range cases {
		if got := escape(tc.in); got != tc.want {
			t.Errorf("escape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWrapRespectsWidth(t *testing.T) {
	t.Parallel()
	lines := wrap("one two three four five six seven eight nine ten", 90, bodySize)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %v", lines)
	}
	for _, l := range lines {
		if textWidth(l, bodySize) > 90 {
			t.Errorf("line %q exceeds width", l)
		}
	}
}
