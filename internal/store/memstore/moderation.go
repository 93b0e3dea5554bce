package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

func (v *view) HideAnswer(ctx context.Context, userID, answerID uuid.UUID) error {
	return v.write(func(st *state) error {
		if _, ok := st.answers[answerID]; !ok {
			return notFound("answer")
		}
		key := pair{userID, answerID}
		if _, ok := st.hidden[key]; !ok {
			st.hidden[key] = v.s.now()
		}
		return nil
	})
}

func (v *view) IsHidden(ctx context.Context, userID, answerID uuid.UUID) (bool, error) {
	var hidden bool
	err := v.read(func(st *state) error {
		_, hidden = st.hidden[pair{userID, answerID}]
		return nil
	})
	return hidden, err
}

func (v *view) CreateBlock(ctx context.Context, userID, blockedUserID uuid.UUID) error {
	return v.write(func(st *state) error {
		key := pair{userID, blockedUserID}
		if _, ok := st.blocks[key]; !ok {
			st.blocks[key] = v.s.now()
		}
		return nil
	})
}

func (v *view) IsBlocked(ctx context.Context, userID, blockedUserID uuid.UUID) (bool, error) {
	var blocked bool
	err := v.read(func(st *state) error {
		_, blocked = st.blocks[pair{userID, blockedUserID}]
		return nil
	})
	return blocked, err
}

func (v *view) ListBlockedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := v.read(func(st *state) error {
		for key := range st.blocks {
			if key.a == userID {
				ids = append(ids, key.b)
			}
		}
		return nil
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, err
}
