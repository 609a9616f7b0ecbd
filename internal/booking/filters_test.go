package booking

import (
	"testing"

	"pgregory.net/rapid"
)

func TestRequiredScope(t *testing.T) {
	cases := map[Status]Scope{
		StatusConfirmed:  ScopeUpcoming,
		StatusCheckedIn:  ScopeUpcoming,
		StatusCheckedOut: ScopePast,
		StatusCancelled:  ScopeAll,
		StatusNoShow:     ScopeAll,
	}
	for status, want := range cases {
		if got := RequiredScope(status, ScopePast); got != want {
			t.Fatalf("%s: expected %s, got %s", status, want, got)
		}
	}
	if got := RequiredScope("", ScopePast); got != ScopePast {
		t.Fatalf("expected empty status to keep current scope, got %s", got)
	}
}

func TestReconcile_StatusChangePullsScope(t *testing.T) {
	got := Reconcile(Filters{Scope: ScopeUpcoming, Status: StatusCheckedOut, Page: 4}, DimensionStatus)
	if got.Scope != ScopePast || got.Status != StatusCheckedOut || got.Page != 1 {
		t.Fatalf("unexpected filters: %+v", got)
	}
}

func TestReconcile_ScopeChangeResetsStatus(t *testing.T) {
	got := Reconcile(Filters{Scope: ScopePast, Status: StatusConfirmed, Page: 3}, DimensionScope)
	if got.Scope != ScopePast || got.Status != StatusCheckedOut || got.Page != 1 {
		t.Fatalf("unexpected filters: %+v", got)
	}

	got = Reconcile(Filters{Scope: ScopeAll, Status: StatusConfirmed, Page: 3}, DimensionScope)
	if got.Status != StatusConfirmed || got.Page != 3 {
		t.Fatalf("expected scope all to keep status and page, got %+v", got)
	}
}

func TestReconcile_Defaults(t *testing.T) {
	got := Reconcile(Filters{}, "")
	want := Filters{Scope: ScopeAll, Page: 1, PageSize: DefaultPageSize}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	got = Reconcile(Filters{Scope: ScopeUpcoming}, DimensionScope)
	if got.Status != StatusConfirmed {
		t.Fatalf("expected upcoming default status, got %q", got.Status)
	}
}

func TestReconcile_IdempotentAndConsistent(t *testing.T) {
	scopes := []Scope{"", ScopeUpcoming, ScopePast, ScopeAll}
	statuses := append([]Status{""}, Statuses...)
	dims := []Dimension{"", DimensionStatus, DimensionScope}

	rapid.Check(t, func(t *rapid.T) {
		f := Filters{
			Scope:    rapid.SampledFrom(scopes).Draw(t, "scope"),
			Status:   rapid.SampledFrom(statuses).Draw(t, "status"),
			Page:     rapid.IntRange(-2, 50).Draw(t, "page"),
			PageSize: rapid.IntRange(-2, 100).Draw(t, "pageSize"),
		}
		changed := rapid.SampledFrom(dims).Draw(t, "changed")

		once := Reconcile(f, changed)
		if twice := Reconcile(once, changed); twice != once {
			t.Fatalf("not idempotent under %q: %+v -> %+v", changed, once, twice)
		}
		if !statusAllowed(once.Scope, once.Status) {
			t.Fatalf("status %s contradicts scope %s", once.Status, once.Scope)
		}
		if once.Page < 1 || once.PageSize < 1 {
			t.Fatalf("invalid paging: %+v", once)
		}
		if changed == DimensionStatus && f.Status != "" && once.Status == f.Status {
			if once.Scope != RequiredScope(f.Status, once.Scope) {
				t.Fatalf("status %s kept under wrong scope %s", f.Status, once.Scope)
			}
		}
	})
}
