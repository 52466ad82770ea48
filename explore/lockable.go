package explore

// Lockable is the mutable-then-frozen protocol shared by the state
// objects and transition informations. An object is built while
// unlocked; Lock freezes it and computes its key once, after which it
// may be shared between workers. Mutating a locked object is a
// programming error and panics.
type Lockable struct {
	locked bool
	key    string
}

func (l *Lockable) IsLocked() bool { return l.locked }

// mutate must be called by every mutator before it changes anything.
func (l *Lockable) mutate() {
	if l.locked {
		panic("modification of locked object")
	}
}

// freeze locks l, storing the key computed by compute. It reports
// whether l was unlocked before.
func (l *Lockable) freeze(compute func() string) bool {
	if l.locked {
		return false
	}
	l.key = compute()
	l.locked = true
	return true
}

// cachedKey returns the key frozen by Lock, or a freshly computed one
// while l is still unlocked.
func (l *Lockable) cachedKey(compute func() string) string {
	if l.locked {
		return l.key
	}
	return compute()
}
