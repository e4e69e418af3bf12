package dom

import (
	"strings"
	"testing"
)

const page = `<!DOCTYPE html>
<html><head><title> Docs Home </title></head>
<body>
<nav><ul id="versions-menu-items"><li>existing</li></ul></nav>
<p id="intro">Hello <b>world</b></p>
</body></html>`

func TestParse_LookupHelpers(t *testing.T) {
	doc, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title() != "Docs Home" {
		t.Errorf("expected title %q, got %q", "Docs Home", doc.Title())
	}
	if doc.Body() == nil {
		t.Fatal("expected body element")
	}

	ul := doc.GetElementByID("versions-menu-items")
	if ul == nil {
		t.Fatal("expected to find menu container")
	}
	if ul.Data != "ul" {
		t.Errorf("expected ul element, got %q", ul.Data)
	}
	if n := len(ElementChildren(ul)); n != 1 {
		t.Errorf("expected 1 existing child, got %d", n)
	}

	intro := doc.GetElementByID("intro")
	if intro == nil {
		t.Fatal("expected to find intro paragraph")
	}
	if got := TextContent(intro); got != "Hello world" {
		t.Errorf("expected text %q, got %q", "Hello world", got)
	}
	if Attr(intro, "id") != "intro" {
		t.Errorf("expected id attr %q, got %q", "intro", Attr(intro, "id"))
	}
}

func TestGetElementByID_Missing(t *testing.T) {
	doc, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.GetElementByID("nope") != nil {
		t.Error("expected nil for unknown id")
	}
	if doc.GetElementByID("") != nil {
		t.Error("expected nil for empty id")
	}
	var nilDoc *Document
	if nilDoc.GetElementByID("intro") != nil {
		t.Error("expected nil lookup on nil document")
	}
}

func TestReadiness_RunsOnceInOrder(t *testing.T) {
	doc, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var calls []string
	doc.OnReady(func(*Document) { calls = append(calls, "first") })
	doc.OnReady(func(*Document) { calls = append(calls, "second") })

	if len(calls) != 0 {
		t.Fatalf("expected no callbacks before ready, got %v", calls)
	}
	if doc.Ready() {
		t.Error("expected document not ready before MarkReady")
	}

	doc.MarkReady()
	doc.MarkReady()

	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("expected [first second], got %v", calls)
	}
	if !doc.Ready() {
		t.Error("expected document ready after MarkReady")
	}
}

func TestReadiness_LateRegistrationRunsImmediately(t *testing.T) {
	doc := New(nil)
	doc.MarkReady()

	ran := 0
	doc.OnReady(func(*Document) { ran++ })
	if ran != 1 {
		t.Errorf("expected late callback to run once, ran %d times", ran)
	}
}

func TestReadiness_NeverReady(t *testing.T) {
	doc := New(nil)
	ran := false
	doc.OnReady(func(*Document) { ran = true })
	if ran {
		t.Error("expected callback not to run without readiness signal")
	}
}

func TestRender_RoundTrip(t *testing.T) {
	doc, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := doc.String()
	if !strings.Contains(out, `<ul id="versions-menu-items"><li>existing</li></ul>`) {
		t.Errorf("expected menu markup in output, got %s", out)
	}
}

func TestScriptSources(t *testing.T) {
	src := `<html><head>
<script src="/js/versions.js"></script>
<script>var inline = 1;</script>
</head><body><script src=" app.js?v=2 "></script></body></html>`
	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := doc.ScriptSources()
	if len(got) != 2 {
		t.Fatalf("expected 2 script sources, got %d: %v", len(got), got)
	}
	if got[0] != "/js/versions.js" || got[1] != "app.js?v=2" {
		t.Errorf("unexpected script sources: %v", got)
	}
}
