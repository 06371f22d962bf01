package utils

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestMax(t *testing.T) {
	for i, c := range []struct {
		vals     [2]int
		expected int
	}{
		{[2]int{3, 7}, 7},
		{[2]int{5, 2}, 5},
		{[2]int{-1, -1}, -1},
	} {
		m := Max(c.vals[0], c.vals[1])
		if m != c.expected {
			t.Errorf("[%d] Expected %v, got %v", i, c.expected, m)
		}
	}
}

func TestMin(t *testing.T) {
	for i, c := range []struct {
		vals     [2]int
		expected int
	}{
		{[2]int{3, 7}, 3},
		{[2]int{5, 2}, 2},
		{[2]int{0, 0}, 0},
	} {
		m := Min(c.vals[0], c.vals[1])
		if m != c.expected {
			t.Errorf("[%d] Expected %v, got %v", i, c.expected, m)
		}
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputJSON(&buf, map[string]int{"rescued": 3}); err != nil {
		t.Fatal(err)
	}
	expected := "{\n\t\"rescued\": 3\n}"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestOutput(t *testing.T) {
	dir, err := ioutil.TempDir("", "utils")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "out.txt")
	if Exists(path) {
		t.Fatalf("%s should not exist yet", path)
	}
	out, err := NewOutput(path)
	if err != nil {
		t.Fatal(err)
	}
	out.WriteString("read1\tACGT\n")
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	if !NonEmpty(path) {
		t.Errorf("%s should have content", path)
	}
}
