package system

import (
	"context"
	"errors"
	"io/fs"
	"testing"
)

func TestMockFS_ReadFile(t *testing.T) {
	mockFS := NewMockFS()
	mockFS.AddFile("/test/file.txt", []byte("hello world"), 0644)

	data, err := mockFS.ReadFile("/test/file.txt")
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}

	if string(data) != "hello world" {
		t.Errorf("ReadFile = %q, want %q", string(data), "hello world")
	}
}

func TestMockFS_ReadFile_NotExists(t *testing.T) {
	mockFS := NewMockFS()

	_, err := mockFS.ReadFile("/nonexistent")
	if err != fs.ErrNotExist {
		t.Errorf("ReadFile error = %v, want fs.ErrNotExist", err)
	}
}

func TestMockFS_AppendFile(t *testing.T) {
	mockFS := NewMockFS()

	if err := mockFS.AppendFile("/env", []byte("A=1\n"), 0644); err != nil {
		t.Fatalf("AppendFile error: %v", err)
	}
	if err := mockFS.AppendFile("/env", []byte("B=2\n"), 0644); err != nil {
		t.Fatalf("AppendFile error: %v", err)
	}

	data, _ := mockFS.GetFile("/env")
	if string(data) != "A=1\nB=2\n" {
		t.Errorf("content = %q, want both lines", string(data))
	}
}

func TestMockFS_CreateAndChmod(t *testing.T) {
	mockFS := NewMockFS()
	mockFS.AddDir("/bin")

	w, err := mockFS.Create("/bin/tool", 0644)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := w.Write([]byte("#!/bin/sh\n")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if err := mockFS.Chmod("/bin/tool", 0755); err != nil {
		t.Fatalf("Chmod error: %v", err)
	}

	data, ok := mockFS.GetFile("/bin/tool")
	if !ok || string(data) != "#!/bin/sh\n" {
		t.Errorf("content = %q, ok=%v", string(data), ok)
	}
	if mode, _ := mockFS.FileMode("/bin/tool"); mode != 0755 {
		t.Errorf("mode = %o, want 755", mode)
	}
}

func TestMockFS_CreateMissingParent(t *testing.T) {
	mockFS := NewMockFS()

	if _, err := mockFS.Create("/missing/tool", 0644); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Create error = %v, want ErrNotExist", err)
	}
}

func TestMockFS_Mkdir(t *testing.T) {
	mockFS := NewMockFS()

	if err := mockFS.Mkdir("/tmp", 0755); err != nil {
		t.Fatalf("Mkdir error: %v", err)
	}
	if err := mockFS.Mkdir("/tmp", 0755); !errors.Is(err, fs.ErrExist) {
		t.Errorf("second Mkdir error = %v, want ErrExist", err)
	}
	if err := mockFS.Mkdir("/a/b", 0755); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Mkdir without parent error = %v, want ErrNotExist", err)
	}
}

func TestMockFS_Access(t *testing.T) {
	mockFS := NewMockFS()
	mockFS.AddDir("/bin")

	if err := mockFS.Access("/bin"); err != nil {
		t.Errorf("Access existing error = %v", err)
	}
	if err := mockFS.Access("/nope"); err == nil {
		t.Error("Access missing should fail")
	}

	mockFS.AccessErr = fs.ErrPermission
	if err := mockFS.Access("/bin"); err != fs.ErrPermission {
		t.Errorf("Access error = %v, want ErrPermission", err)
	}
}

func TestMockFS_ReadDirSorted(t *testing.T) {
	mockFS := NewMockFS()
	mockFS.AddDir("/root")
	mockFS.AddFile("/root/b", nil, 0644)
	mockFS.AddFile("/root/a", nil, 0644)
	mockFS.AddDir("/root/c")

	entries, err := mockFS.ReadDir("/root")
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Errorf("names = %v, want [a b c]", names)
	}
	if !entries[2].IsDir() {
		t.Error("c should be a directory")
	}
}

func TestMockFS_ReadDirEmptyAndMissing(t *testing.T) {
	mockFS := NewMockFS()
	mockFS.AddDir("/empty")

	entries, err := mockFS.ReadDir("/empty")
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}

	if _, err := mockFS.ReadDir("/missing"); err != fs.ErrNotExist {
		t.Errorf("ReadDir missing error = %v, want ErrNotExist", err)
	}
}

func TestMockFS_AddFileCreatesParents(t *testing.T) {
	mockFS := NewMockFS()
	mockFS.AddFile("/a/b/file.txt", []byte("x"), 0644)

	if !mockFS.Exists("/a/b/file.txt") {
		t.Error("file should exist")
	}
	if mockFS.IsDir("/a/b/file.txt") {
		t.Error("file should not be a directory")
	}
	if !mockFS.IsDir("/a/b") || !mockFS.IsDir("/a") {
		t.Error("parents should be directories")
	}
}

func TestMockFS_MkdirAll(t *testing.T) {
	mockFS := NewMockFS()

	if err := mockFS.MkdirAll("/a/b/c", 0755); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}

	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		if !mockFS.IsDir(dir) {
			t.Errorf("%s should be a directory", dir)
		}
	}
}

func TestMockFS_ErrorInjection(t *testing.T) {
	mockFS := NewMockFS()
	mockFS.ReadFileErr = fs.ErrPermission

	_, err := mockFS.ReadFile("/anything")
	if err != fs.ErrPermission {
		t.Errorf("ReadFile error = %v, want ErrPermission", err)
	}
}

func TestMockExecutor_Execute(t *testing.T) {
	exec := NewMockExecutor()
	exec.AddResponse("gcloud auth", []byte("[]"), nil)

	output, err := exec.Execute(context.Background(), "gcloud", "auth", "list")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if string(output) != "[]" {
		t.Errorf("Output = %q, want %q", string(output), "[]")
	}

	cmd, ok := exec.LastCommand()
	if !ok {
		t.Fatal("No command recorded")
	}
	if cmd.Name != "gcloud" || len(cmd.Args) != 2 {
		t.Errorf("Command = %+v", cmd)
	}
}

func TestMockExecutor_DefaultResponse(t *testing.T) {
	exec := NewMockExecutor()
	exec.DefaultResponse = MockResponse{Output: []byte("default"), Err: nil}

	output, err := exec.Execute(context.Background(), "unknown", "command")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if string(output) != "default" {
		t.Errorf("Output = %q, want %q", string(output), "default")
	}
}

func TestMockStarter(t *testing.T) {
	starter := NewMockStarter()

	var exited ExitStatus
	var failed error
	pid, err := starter.StartDetached("/bin/proxy", []string{"a", "b"}, Observers{
		OnExit:  func(s ExitStatus) { exited = s },
		OnError: func(err error) { failed = err },
	})
	if err != nil {
		t.Fatalf("StartDetached error: %v", err)
	}
	if pid != 4242 {
		t.Errorf("pid = %d, want 4242", pid)
	}
	if len(starter.Starts) != 1 || starter.Starts[0].Path != "/bin/proxy" {
		t.Fatalf("Starts = %+v", starter.Starts)
	}

	starter.Exit(ExitStatus{Code: 3})
	if exited.Code != 3 {
		t.Errorf("exit code = %d, want 3", exited.Code)
	}

	boom := errors.New("boom")
	starter.Fail(boom)
	if failed != boom {
		t.Errorf("OnError got %v, want boom", failed)
	}
}

func TestMockStarter_StartErr(t *testing.T) {
	starter := NewMockStarter()
	starter.StartErr = fs.ErrPermission

	if _, err := starter.StartDetached("/bin/proxy", nil, Observers{}); err != fs.ErrPermission {
		t.Errorf("error = %v, want ErrPermission", err)
	}
	if len(starter.Starts) != 0 {
		t.Error("failed start should not be recorded")
	}
}
