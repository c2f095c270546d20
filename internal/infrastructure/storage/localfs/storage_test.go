package localfs

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
)

func TestSaveThenOpenRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	content := "%PDF-1.4 fake contract body"
	size, err := storage.Save(context.Background(), "abc_contract.pdf", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len(content)) {
		t.Errorf("size = %d, want %d", size, len(content))
	}

	reader, err := storage.Open(context.Background(), "abc_contract.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != content {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestOpenMissingKeyIsNotFound(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = storage.Open(context.Background(), "nope_contract.pdf")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrContractNotFound) {
		t.Errorf("error = %v, want not-found kind", err)
	}
}

func TestTraversalKeysRejected(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, key := range []string{"../escape.pdf", "/etc/passwd", "a/../../b.pdf"} {
		if _, err := storage.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Errorf("Save(%q) succeeded, want invalid input", key)
		} else if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Errorf("Save(%q) error = %v, want invalid input kind", key, err)
		}
	}
}
