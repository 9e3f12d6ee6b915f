package gate

// ClientQuota enforces the free-plan cap on client records. Admin identities
// and paid plans are unlimited.
type ClientQuota struct {
	FreeLimit int
}

// Allows reports whether an owner on the given plan may add one more client
// when current of them already exist.
func (q ClientQuota) Allows(plan string, admin bool, current int64) bool {
	if admin || plan != "free" {
		return true
	}
	return current < int64(q.FreeLimit)
}
