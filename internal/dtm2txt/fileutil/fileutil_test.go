package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFileExists(t *testing.T) {
	// 一時ファイルを作成
	tmpfile, err := os.CreateTemp("", "test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())
	tmpfile.Close()

	// 存在するファイルのテスト
	if !FileExists(tmpfile.Name()) {
		t.Errorf("FileExists returned false for existing file")
	}

	// 存在しないファイルのテスト
	if FileExists("/nonexistent/file/path") {
		t.Errorf("FileExists returned true for non-existing file")
	}
}

func TestSiblingPath(t *testing.T) {
	tests := []struct {
		input    string
		newExt   string
		expected string
	}{
		{"movie.dtm", ".txt", "movie.txt"},
		{"movie.txt", ".dtm", "movie.dtm"},
		{"/path/to/movie.dtm", ".txt", "/path/to/movie.txt"},
		{"movie.DTM", ".txt", "movie.txt"},
		{"movie", ".txt", "movie.txt"},
		{"dir.v2/movie.dtm", ".txt", "dir.v2/movie.txt"},
	}

	for _, test := range tests {
		result := SiblingPath(test.input, test.newExt)
		if result != test.expected {
			t.Errorf("SiblingPath(%s, %s) = %s; want %s", test.input, test.newExt, result, test.expected)
		}
	}
}

func TestOSFileSystem(t *testing.T) {
	// 一時ディレクトリを作成
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "movie.dtm")
	content := []byte{0x44, 0x54, 0x4D, 0x1A}

	fs := NewOSFileSystem()

	if fs.FileExists(testFile) {
		t.Error("FileExists returned true before writing")
	}

	if err := fs.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if !fs.FileExists(testFile) {
		t.Error("FileExists returned false after writing")
	}

	data, err := fs.ReadFile(testFile)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("Content mismatch: got %v, want %v", data, content)
	}
}
