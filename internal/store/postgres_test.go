package store

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestValidID(t *testing.T) {
	if !validID(uuid.New().String()) {
		t.Fatalf("fresh uuid should be valid")
	}
	if validID("run-1") {
		t.Fatalf("non-uuid id should be rejected")
	}
}

func TestNullIfEmpty(t *testing.T) {
	if v := nullIfEmpty(""); v != nil {
		t.Fatalf("empty -> nil expected, got %v", v)
	}
	if v := nullIfEmpty("x"); v != "x" {
		t.Fatalf("non-empty passthrough expected, got %v", v)
	}
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{0: 100, -5: 100, 501: 100, 25: 25, 500: 500} {
		if got := clampLimit(in); got != want {
			t.Fatalf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestListRunsQueryPagesByCreation(t *testing.T) {
	q, args := listRunsQuery("t1", "", "", 10)
	if !strings.HasSuffix(q, " ORDER BY created_at, id LIMIT $2") {
		t.Fatalf("unexpected ordering: %s", q)
	}
	if len(args) != 2 || args[0] != "t1" || args[1] != 10 {
		t.Fatalf("unexpected args: %v", args)
	}

	cur := uuid.New().String()
	q, args = listRunsQuery("t1", "completed", cur, 5)
	want := " AND status=$2 AND (created_at, id) > (SELECT created_at, id FROM ga_runs WHERE tenant_id=$1 AND id=$3) ORDER BY created_at, id LIMIT $4"
	if !strings.HasSuffix(q, want) {
		t.Fatalf("query %q\nwant suffix %q", q, want)
	}
	if len(args) != 4 || args[1] != "completed" || args[2] != cur || args[3] != 5 {
		t.Fatalf("unexpected args: %v", args)
	}
}
