package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readout.log")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestTail_ReturnsLastLines(t *testing.T) {
	path := writeLog(t, "one\ntwo\r\nthree\nfour\n")

	got, err := Tail(path, 2)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(got) != 2 || got[0] != "three" || got[1] != "four" {
		t.Fatalf("Tail = %q, want [three four]", got)
	}

	got, err = Tail(path, 10)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(got) != 4 || got[1] != "two" {
		t.Fatalf("Tail = %q, want all four lines with CR stripped", got)
	}
}

func TestTail_MissingEmptyAndZero(t *testing.T) {
	if got, err := Tail(filepath.Join(t.TempDir(), "nope.log"), 5); err != nil || got != nil {
		t.Fatalf("Tail(missing) = %q, %v; want nil, nil", got, err)
	}
	if got, err := Tail(writeLog(t, ""), 5); err != nil || got != nil {
		t.Fatalf("Tail(empty) = %q, %v; want nil, nil", got, err)
	}
	if got, err := Tail(writeLog(t, "x\n"), 0); err != nil || got != nil {
		t.Fatalf("Tail(max=0) = %q, %v; want nil, nil", got, err)
	}
}

func TestTail_LargeFileDropsPartialFirstLine(t *testing.T) {
	var b strings.Builder
	for i := 0; b.Len() < maxTailBytes*2; i++ {
		fmt.Fprintf(&b, "line %06d %s\n", i, strings.Repeat("x", 40))
	}
	path := writeLog(t, b.String())

	got, err := Tail(path, 100000)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("Tail returned no lines")
	}
	if !strings.HasPrefix(got[0], "line ") {
		t.Fatalf("first line %q is partial", got[0])
	}
	all := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if got[len(got)-1] != all[len(all)-1] {
		t.Fatalf("last line = %q, want %q", got[len(got)-1], all[len(all)-1])
	}
}
