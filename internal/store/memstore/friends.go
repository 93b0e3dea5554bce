package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"catchUpAPI/internal/store"
	"catchUpAPI/internal/types/friendship"
	"catchUpAPI/internal/types/user"
)

func (v *view) CreateFriendRequest(ctx context.Context, fr *friendship.FriendRequest) error {
	return v.write(func(st *state) error {
		if fr.ID == uuid.Nil {
			fr.ID = uuid.New()
		}
		now := v.s.now()
		fr.CreatedAt, fr.UpdatedAt = now, now
		c := *fr
		st.requests[fr.ID] = &c
		return nil
	})
}

func (v *view) GetFriendRequest(ctx context.Context, id uuid.UUID) (*friendship.FriendRequest, error) {
	var out *friendship.FriendRequest
	err := v.read(func(st *state) error {
		fr, ok := st.requests[id]
		if !ok {
			return notFound("friend request")
		}
		c := *fr
		out = &c
		return nil
	})
	return out, err
}

func (v *view) FindFriendRequest(ctx context.Context, a, b uuid.UUID) (*friendship.FriendRequest, error) {
	var out *friendship.FriendRequest
	err := v.read(func(st *state) error {
		for _, fr := range st.requests {
			if (fr.SenderID == a && fr.ReceiverID == b) || (fr.SenderID == b && fr.ReceiverID == a) {
				c := *fr
				out = &c
				return nil
			}
		}
		return notFound("friend request")
	})
	return out, err
}

func (v *view) DeleteFriendRequest(ctx context.Context, id uuid.UUID) error {
	return v.write(func(st *state) error {
		if _, ok := st.requests[id]; !ok {
			return notFound("friend request")
		}
		delete(st.requests, id)
		return nil
	})
}

func (v *view) listFriendRequests(match func(fr *friendship.FriendRequest) bool) ([]*friendship.FriendRequest, error) {
	out := []*friendship.FriendRequest{}
	err := v.read(func(st *state) error {
		for _, fr := range st.requests {
			if match(fr) {
				c := *fr
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func (v *view) ListSentFriendRequests(ctx context.Context, senderID uuid.UUID) ([]*friendship.FriendRequest, error) {
	return v.listFriendRequests(func(fr *friendship.FriendRequest) bool { return fr.SenderID == senderID })
}

func (v *view) ListReceivedFriendRequests(ctx context.Context, receiverID uuid.UUID) ([]*friendship.FriendRequest, error) {
	return v.listFriendRequests(func(fr *friendship.FriendRequest) bool { return fr.ReceiverID == receiverID })
}

func (v *view) AddFriendship(ctx context.Context, a, b uuid.UUID) error {
	return v.write(func(st *state) error {
		link := func(from, to uuid.UUID) {
			if st.friends[from] == nil {
				st.friends[from] = map[uuid.UUID]struct{}{}
			}
			st.friends[from][to] = struct{}{}
		}
		link(a, b)
		link(b, a)
		return nil
	})
}

func (v *view) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var ok bool
	err := v.read(func(st *state) error {
		_, ok = st.friends[a][b]
		return nil
	})
	return ok, err
}

func (v *view) ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error) {
	friends := []*user.User{}
	err := v.read(func(st *state) error {
		for id := range st.friends[userID] {
			if u, ok := st.users[id]; ok {
				friends = append(friends, cloneUser(u))
			}
		}
		return nil
	})
	sortUsersByName(friends)
	return friends, err
}

func (v *view) FriendGraph(ctx context.Context) (store.Graph, error) {
	g := store.Graph{}
	err := v.read(func(st *state) error {
		for id := range st.users {
			g[id] = nil
		}
		for id, set := range st.friends {
			for f := range set {
				g[id] = append(g[id], f)
			}
			sort.Slice(g[id], func(i, j int) bool { return g[id][i].String() < g[id][j].String() })
		}
		return nil
	})
	return g, err
}
