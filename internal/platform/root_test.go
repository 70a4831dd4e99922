package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	// /tmp/
	//   repo/ (.bloco)
	//     subdir/
	//       nested/
	//   empty/

	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	subDir := filepath.Join(repoDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(emptyDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(repoDir, LocalDirName), 0755); err != nil {
		t.Fatal(err)
	}
	// A file with the marker name is not a notebook.
	if err := os.WriteFile(filepath.Join(emptyDir, LocalDirName), nil, 0644); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(repoDir, LocalDirName)
	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: repoDir, wantRoot: want},
		{name: "Start in Subdir", startPath: subDir, wantRoot: want},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: want},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != "" && filepath.Clean(got) != filepath.Clean(tt.wantRoot) {
				t.Errorf("FindRoot() = %v, want %v", got, tt.wantRoot)
			}
		})
	}
}

func TestDefaultStorePath_XDG(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Chdir(t.TempDir())

	if got, want := DefaultStorePath(), filepath.Join(dataHome, "bloco"); got != want {
		t.Errorf("DefaultStorePath() = %q, want %q", got, want)
	}
}
