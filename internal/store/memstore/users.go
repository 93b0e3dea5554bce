package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"catchUpAPI/internal/types/user"
)

func (v *view) CreateUser(ctx context.Context, u *user.User) error {
	return v.write(func(st *state) error {
		for _, existing := range st.users {
			if existing.PhoneNumber == u.PhoneNumber {
				return fmt.Errorf("failed to create user: phone number %s already registered", u.PhoneNumber)
			}
		}
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		now := v.s.now()
		u.CreatedAt, u.UpdatedAt = now, now
		st.users[u.ID] = cloneUser(u)
		return nil
	})
}

func (v *view) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var out *user.User
	err := v.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return notFound("user")
		}
		out = cloneUser(u)
		return nil
	})
	return out, err
}

func (v *view) findUser(match func(u *user.User) bool) (*user.User, error) {
	var out *user.User
	err := v.read(func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				out = cloneUser(u)
				return nil
			}
		}
		return notFound("user")
	})
	return out, err
}

func (v *view) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	return v.findUser(func(u *user.User) bool { return u.ClerkID == clerkID })
}

func (v *view) GetUserByPhone(ctx context.Context, phone string) (*user.User, error) {
	return v.findUser(func(u *user.User) bool { return u.PhoneNumber == phone })
}

func (v *view) ListUsersByPhones(ctx context.Context, phones []string) ([]*user.User, error) {
	wanted := make(map[string]struct{}, len(phones))
	for _, p := range phones {
		wanted[p] = struct{}{}
	}
	users := []*user.User{}
	err := v.read(func(st *state) error {
		for _, u := range st.users {
			if _, ok := wanted[u.PhoneNumber]; ok {
				users = append(users, cloneUser(u))
			}
		}
		return nil
	})
	sortUsersByName(users)
	return users, err
}

func (v *view) ListPushTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := v.read(func(st *state) error {
		for _, u := range st.users {
			if u.HasPushToken() {
				tokens = append(tokens, *u.PushToken)
			}
		}
		return nil
	})
	return tokens, err
}

func (v *view) ClearPushToken(ctx context.Context, token string) error {
	return v.write(func(st *state) error {
		for _, u := range st.users {
			if u.PushToken != nil && *u.PushToken == token {
				u.PushToken = nil
				u.UpdatedAt = v.s.now()
			}
		}
		return nil
	})
}

func (v *view) SetPushToken(ctx context.Context, userID uuid.UUID, token string) error {
	return v.write(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return notFound("user")
		}
		t := token
		u.PushToken = &t
		u.UpdatedAt = v.s.now()
		return nil
	})
}

func (v *view) UnsetPushToken(ctx context.Context, userID uuid.UUID) error {
	return v.write(func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return notFound("user")
		}
		u.PushToken = nil
		u.UpdatedAt = v.s.now()
		return nil
	})
}

func (v *view) CreateAnonUser(ctx context.Context, a *user.AnonUser) error {
	return v.write(func(st *state) error {
		for _, existing := range st.anons {
			if existing.PhoneNumber == a.PhoneNumber {
				return fmt.Errorf("failed to create anon user: phone number %s already registered", a.PhoneNumber)
			}
		}
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		now := v.s.now()
		a.CreatedAt, a.UpdatedAt = now, now
		c := *a
		st.anons[a.ID] = &c
		return nil
	})
}

func (v *view) GetAnonUserByPhone(ctx context.Context, phone string) (*user.AnonUser, error) {
	var out *user.AnonUser
	err := v.read(func(st *state) error {
		for _, a := range st.anons {
			if a.PhoneNumber == phone {
				c := *a
				out = &c
				return nil
			}
		}
		return notFound("anon user")
	})
	return out, err
}

func (v *view) DeleteAnonUser(ctx context.Context, id uuid.UUID) error {
	return v.write(func(st *state) error {
		if _, ok := st.anons[id]; !ok {
			return notFound("anon user")
		}
		delete(st.anons, id)
		return nil
	})
}
