package mutation

import (
	"context"
	"errors"
	"testing"

	"github.com/rewindkit/rewind/pkg/errmodel"
)

func TestRegistry_RegisterAndApply(t *testing.T) {
	reg := NewRegistry()
	total := 0
	if err := reg.Register("add", func(ctx context.Context, payload any) error {
		n, _ := payload.(int)
		total += n
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := reg.Apply(context.Background(), Record{Kind: "add", Payload: 5}); err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Fatalf("total=%d want 5", total)
	}
}

func TestRegistry_DuplicateKind(t *testing.T) {
	reg := NewRegistry()
	h := func(ctx context.Context, payload any) error { return nil }
	if err := reg.Register("add", h); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("add", h); err == nil {
		t.Fatal("duplicate registration accepted")
	}
}

func TestRegistry_RejectsEmptyKindAndNilHandler(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("", func(ctx context.Context, payload any) error { return nil }); err == nil {
		t.Fatal("empty kind accepted")
	}
	if err := reg.Register("add", nil); err == nil {
		t.Fatal("nil handler accepted")
	}
}

func TestRegistry_UnknownKind(t *testing.T) {
	reg := NewRegistry()
	err := reg.Apply(context.Background(), Record{Kind: "vanish"})
	if err == nil {
		t.Fatal("unknown kind accepted")
	}
	if !errmodel.IsCategory(err, errmodel.CategoryValidation) {
		t.Fatalf("error category: %v", err)
	}
}

func TestRegistry_HandlerErrorPropagates(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	if err := reg.Register("fail", func(ctx context.Context, payload any) error { return boom }); err != nil {
		t.Fatal(err)
	}
	if err := reg.Apply(context.Background(), Record{Kind: "fail"}); !errors.Is(err, boom) {
		t.Fatalf("err=%v want boom", err)
	}
}

func TestApplierFunc(t *testing.T) {
	called := false
	var a Applier = ApplierFunc(func(ctx context.Context, rec Record) error {
		called = rec.Kind == "ping"
		return nil
	})
	if err := a.Apply(context.Background(), Record{Kind: "ping"}); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("ApplierFunc did not dispatch")
	}
}
