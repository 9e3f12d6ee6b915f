package gate

import (
	"context"
	"testing"
)

type owned struct{ owner uint }

func (o owned) GetOwnerID() uint { return o.owner }

func TestOwnershipPolicy(t *testing.T) {
	p := NewOwnershipPolicy()
	ctx := context.Background()
	if !p.Can(ctx, 1, ActionList, nil) {
		t.Fatalf("nil resource should pass")
	}
	if !p.Can(ctx, 1, ActionUpdate, owned{owner: 1}) {
		t.Fatalf("owner should pass")
	}
	if p.Can(ctx, 2, ActionUpdate, owned{owner: 1}) {
		t.Fatalf("non-owner must be denied")
	}
	if p.Can(ctx, 1, ActionUpdate, struct{}{}) {
		t.Fatalf("non-ownable resource must be denied")
	}
}

func TestAdminBypass(t *testing.T) {
	admins := map[uint]bool{99: true}
	p := NewAdminBypassPolicy(NewOwnershipPolicy(), func(_ context.Context, uid uint) bool {
		return admins[uid]
	})
	ctx := context.Background()
	if !p.Can(ctx, 99, ActionDelete, owned{owner: 1}) {
		t.Fatalf("admin should bypass ownership")
	}
	if p.Can(ctx, 2, ActionDelete, owned{owner: 1}) {
		t.Fatalf("regular user still bound by ownership")
	}
}

func TestClientQuota(t *testing.T) {
	q := ClientQuota{FreeLimit: 5}
	if !q.Allows("free", false, 4) {
		t.Fatalf("under the cap should pass")
	}
	if q.Allows("free", false, 5) {
		t.Fatalf("at the cap must be denied")
	}
	if !q.Allows("free", true, 50) {
		t.Fatalf("admin bypasses the cap")
	}
	if !q.Allows("pro", false, 50) {
		t.Fatalf("paid plans are unlimited")
	}
}
