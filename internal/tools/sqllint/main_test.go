package main

import (
	"strings"
	"testing"
)

const lintFixture = "package q\n\n" +
	"const QGood = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;\n`\n\n" +
	"const QNoMarker = `\n  select id from users;\n`\n\n" +
	"const QBadMarker = `--sql not-a-uuid\ninsert into t values (1);\n`\n\n" +
	"const QDup = `--sql 11111111-2222-4333-8444-555555555555\ndelete from t;\n`\n\n" +
	"const QDDL = `create table if not exists t (id int);`\n\n" +
	"const Prose = \"Render the scene with soft light and select warm tones.\"\n"

func TestLintSource(t *testing.T) {
	vs, err := lintSource("q.go", lintFixture, map[string]string{})
	if err != nil {
		t.Fatalf("lintSource: %v", err)
	}
	got := map[string]string{}
	for _, v := range vs {
		got[v.name] = v.message
	}
	want := map[string]string{
		"QNoMarker":  "missing or invalid",
		"QBadMarker": "missing or invalid",
		"QDup":       "marker already used at q.go:3",
		"QDDL":       "missing or invalid",
	}
	if len(got) != len(want) {
		t.Fatalf("violations = %v, want keys of %v", got, want)
	}
	for name, prefix := range want {
		if !strings.HasPrefix(got[name], prefix) {
			t.Fatalf("%s: message = %q, want prefix %q", name, got[name], prefix)
		}
	}
}

func TestLintSourceSharesMarkersAcrossFiles(t *testing.T) {
	seen := map[string]string{}
	src := "package q\nconst A = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;`\n"
	if vs, _ := lintSource("a.go", src, seen); len(vs) != 0 {
		t.Fatalf("first file violations = %+v", vs)
	}
	vs, _ := lintSource("b.go", src, seen)
	if len(vs) != 1 || !strings.Contains(vs[0].message, "a.go:2") {
		t.Fatalf("second file violations = %+v", vs)
	}
}
