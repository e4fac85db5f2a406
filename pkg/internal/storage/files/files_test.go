package files

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()

	store, err := New(t.TempDir(), maxBytes, []string{"pdf", "jpg", "jpeg", "png", "webp"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	return store
}

func TestSaveAndResolveRoundTrip(t *testing.T) {
	store := newTestStore(t, 1<<20)

	content := append(append([]byte{}, pngHeader...), []byte("payload-bytes")...)

	stored, err := store.Save(bytes.NewReader(content), "photo.png", int64(len(content)))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path, err := store.Resolve(stored)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if !bytes.Equal(got, content) {
		t.Fatalf("stored content differs: got %d bytes, want %d", len(got), len(content))
	}
}

func TestSaveRejectsUnsupportedExtension(t *testing.T) {
	store := newTestStore(t, 1<<20)

	_, err := store.Save(bytes.NewReader([]byte("MZ")), "malware.exe", 2)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}

	assertEmptyDir(t, store.Root())
}

func TestSaveRejectsMismatchedContent(t *testing.T) {
	store := newTestStore(t, 1<<20)

	// 扩展名声明 png，内容是纯文本
	_, err := store.Save(bytes.NewReader([]byte("just some text")), "fake.png", 14)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}

	assertEmptyDir(t, store.Root())
}

func TestSaveRejectsDeclaredTooLarge(t *testing.T) {
	store := newTestStore(t, 16)

	_, err := store.Save(bytes.NewReader(pngHeader), "big.png", 17)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	assertEmptyDir(t, store.Root())
}

func TestSaveRejectsActualTooLarge(t *testing.T) {
	store := newTestStore(t, 600)

	// 声明大小合法，实际内容超限
	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0xAA}, 700)...)

	_, err := store.Save(bytes.NewReader(content), "liar.png", 100)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	assertEmptyDir(t, store.Root())
}

func TestResolveRejectsTraversal(t *testing.T) {
	store := newTestStore(t, 1<<20)

	outside := filepath.Join(filepath.Dir(store.Root()), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	for _, name := range []string{
		"../secret.txt",
		"..",
		"a/../../secret.txt",
		"/etc/passwd",
		"",
	} {
		if _, err := store.Resolve(name); !errors.Is(err, ErrNotExist) {
			t.Errorf("Resolve(%q): expected ErrNotExist, got %v", name, err)
		}
	}
}

func TestResolveMissing(t *testing.T) {
	store := newTestStore(t, 1<<20)

	if _, err := store.Resolve("nope.png"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	store := newTestStore(t, 1<<20)

	stored, err := store.Save(bytes.NewReader(pngHeader), "gone.png", int64(len(pngHeader)))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Remove(stored); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := store.Resolve(stored); !errors.Is(err, ErrNotExist) {
		t.Fatalf("expected ErrNotExist after Remove, got %v", err)
	}

	// 幂等
	if err := store.Remove(stored); err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}
}

func TestWriteBytes(t *testing.T) {
	store, err := New(t.TempDir(), 0, []string{"png"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := store.WriteBytes("code.png", pngHeader); err != nil {
		t.Fatalf("WriteBytes failed: %v", err)
	}

	if _, err := store.Resolve("code.png"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if err := store.WriteBytes("../escape.png", pngHeader); !errors.Is(err, ErrNotExist) {
		t.Fatalf("expected ErrNotExist for traversal, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":        "report.pdf",
		"über größe.png":    "_ber_gr__e.png",
		"..hidden":          "hidden",
		"a b\tc.jpg":        "a_b_c.jpg",
		"../../passwd":      "_.._passwd", // filepath.Base 先行，清洗兜底
		"":                  "file",
		"....":              "file",
		"CON<>:\"|?*.webp":  "CON_______.webp",
		"normal-name_1.pdf": "normal-name_1.pdf",
	}

	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	if len(entries) != 0 {
		t.Fatalf("expected empty dir, found %d entries", len(entries))
	}
}
