package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestE(t *testing.T) {
	t.Run("nil error stays nil", func(t *testing.T) {
		if got := E("links.registry.Create", Invalid, nil); got != nil {
			t.Errorf("E(nil) = %v, want nil", got)
		}
	})

	t.Run("fields are set", func(t *testing.T) {
		root := errors.New("no rows")
		err := E("postgres.store.FindURLByCode", NotFound, root)

		var e *Error
		if !errors.As(err, &e) {
			t.Fatal("expected *errx.Error")
		}
		if e.Op != "postgres.store.FindURLByCode" {
			t.Errorf("Op = %q", e.Op)
		}
		if e.Kind != NotFound {
			t.Errorf("Kind = %v, want NotFound", e.Kind)
		}
		if !errors.Is(err, root) {
			t.Error("root cause lost")
		}
	})

	for _, kind := range []Kind{Unknown, NotFound, Conflict, Invalid, Unauthorized, Unavailable, Internal} {
		t.Run(fmt.Sprintf("kind %s round trips", kind), func(t *testing.T) {
			if got := KindOf(E("op", kind, errors.New("x"))); got != kind {
				t.Errorf("KindOf() = %v, want %v", got, kind)
			}
		})
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf("links.registry.Delete", NotFound, "code %q not found", "Ab12Cd")
	if got, want := err.Error(), `links.registry.Delete: code "Ab12Cd" not found`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := KindOf(err); got != NotFound {
		t.Errorf("KindOf() = %v, want NotFound", got)
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"op only", &Error{Op: "links.handler.Redirect"}, "links.handler.Redirect"},
		{"err only", &Error{Err: errors.New("boom")}, "boom"},
		{"op and err", &Error{Op: "sqlite.store.Insert", Err: errors.New("disk I/O error")}, "sqlite.store.Insert: disk I/O error"},
		{"empty", &Error{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNestedWrapping(t *testing.T) {
	root := errors.New("connection refused")
	store := E("postgres.store.Insert", Unavailable, root)
	registry := E("links.registry.Create", KindOf(store), store)

	if !errors.Is(registry, root) {
		t.Error("errors.Is failed through two layers")
	}
	if got := OpOf(registry); got != "links.registry.Create" {
		t.Errorf("OpOf() = %q, want outermost op", got)
	}
	if got := KindOf(registry); got != Unavailable {
		t.Errorf("KindOf() = %v, want Unavailable", got)
	}
}

func TestKindOf_PlainError(t *testing.T) {
	plain := errors.New("plain")
	if got := KindOf(plain); got != Unknown {
		t.Errorf("KindOf(plain) = %v, want Unknown", got)
	}
	if got := OpOf(plain); got != "" {
		t.Errorf("OpOf(plain) = %q, want empty", got)
	}
	wrapped := fmt.Errorf("ctx: %w", E("op", Conflict, plain))
	if got := KindOf(wrapped); got != Conflict {
		t.Errorf("KindOf(fmt-wrapped) = %v, want Conflict", got)
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		Unknown:      "Unknown",
		NotFound:     "NotFound",
		Conflict:     "Conflict",
		Invalid:      "Invalid",
		Unauthorized: "Unauthorized",
		Unavailable:  "Unavailable",
		Internal:     "Internal",
		Kind(42):     "Kind(42)",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
