package blob

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestS3MockRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewS3MockForTests()
	if store.Driver() != DriverS3 {
		t.Fatalf("unexpected driver")
	}
	info, err := store.Put(ctx, "exports/xyz/items.csv", bytes.NewReader([]byte("id,name\n")), PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "exports/xyz/items.csv" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "exports/xyz/items.csv", bytes.NewReader([]byte("dup")), PutOptions{}); err == nil {
		t.Fatalf("expected duplicate failure")
	}
	got, rc, err := store.Get(ctx, "exports/xyz/items.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "id,name\n" || got.ContentType != "text/csv" {
		t.Fatalf("unexpected get %q %+v", b, got)
	}
	if _, err := store.Head(ctx, "missing"); err == nil {
		t.Fatalf("expected head miss")
	}
	list, err := store.List(ctx, "exports/")
	if err != nil || len(list) != 1 || list[0].Key != "exports/xyz/items.csv" {
		t.Fatalf("unexpected list %v %+v", err, list)
	}
	url, err := store.PresignURL(ctx, "exports/xyz/items.csv", SignedURLOptions{})
	if err != nil || !strings.Contains(url, "exports/xyz/items.csv") {
		t.Fatalf("presign: %v %s", err, url)
	}
	if _, err := store.PresignURL(ctx, "exports/xyz/items.csv", SignedURLOptions{Method: "PUT"}); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	ok, err := store.Delete(ctx, "exports/xyz/items.csv")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
}

func TestOpenS3FromEnvRequiresBucket(t *testing.T) {
	t.Setenv("ITEMCORE_BLOB_S3_BUCKET", "")
	if _, err := OpenS3FromEnv(context.Background()); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}

func TestOpenSelectsDriverFromEnv(t *testing.T) {
	t.Setenv("ITEMCORE_BLOB_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("expected memory driver, got %s", store.Driver())
	}
	t.Setenv("ITEMCORE_BLOB_DRIVER", "bogus")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
