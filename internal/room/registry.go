package room

import "github.com/Zanex/poker-planning/internal/domain"

// registry is the session-to-user mapping owned by a single room actor. It is
// only ever touched from the actor goroutine, so it needs no locking. Roster
// enumeration preserves join order so clients observe a stable ordering.
type registry struct {
	users map[Sender]*domain.User
	order []Sender
}

func newRegistry() *registry {
	return &registry{users: make(map[Sender]*domain.User)}
}

// put associates a session with a user. A session that joins again keeps its
// original roster position.
func (r *registry) put(s Sender, u *domain.User) {
	if _, exists := r.users[s]; !exists {
		r.order = append(r.order, s)
	}
	r.users[s] = u
}

func (r *registry) get(s Sender) *domain.User {
	return r.users[s]
}

// remove detaches a session. No-op if the session was never registered.
func (r *registry) remove(s Sender) {
	if _, exists := r.users[s]; !exists {
		return
	}
	delete(r.users, s)
	for i, other := range r.order {
		if other == s {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *registry) len() int {
	return len(r.users)
}

// list returns the registered users in join order.
func (r *registry) list() []*domain.User {
	out := make([]*domain.User, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, r.users[s])
	}
	return out
}
