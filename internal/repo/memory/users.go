package memory

import (
	"context"
	"sort"
	"time"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
)

type UserRepo struct {
	store *Store
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	defer r.store.lock(ctx)()
	id, ok := r.store.st.byName[username]
	if !ok {
		return nil, nil
	}
	u := r.store.st.users[id]
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int) (*domain.User, error) {
	defer r.store.lock(ctx)()
	u, ok := r.store.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// LockByID is FindByID: the store mutex already serialises transactions.
func (r *UserRepo) LockByID(ctx context.Context, id int) (*domain.User, error) {
	return r.FindByID(ctx, id)
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	defer r.store.lock(ctx)()
	st := &r.store.st
	if _, ok := st.byName[user.Username]; ok {
		return nil, domain.ErrConflict("Username already exists")
	}
	if user.Email != nil {
		for _, u := range st.users {
			if u.Email != nil && *u.Email == *user.Email {
				return nil, domain.ErrConflict("Email already exists")
			}
		}
	}
	st.lastUserID++
	user.ID = st.lastUserID
	user.Balance = 0
	user.CreatedAt = time.Now()
	st.users[user.ID] = *user
	st.byName[user.Username] = user.ID
	return user, nil
}

func (r *UserRepo) UpdateBalance(ctx context.Context, id int, balance int64) error {
	defer r.store.lock(ctx)()
	u, ok := r.store.st.users[id]
	if !ok {
		return domain.ErrNotFound("User not found")
	}
	if balance < 0 {
		return domain.ErrValidation("balance must not be negative")
	}
	u.Balance = balance
	r.store.st.users[id] = u
	return nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, id int, role domain.Role) error {
	defer r.store.lock(ctx)()
	u, ok := r.store.st.users[id]
	if !ok {
		return domain.ErrNotFound("User not found")
	}
	u.Role = role
	r.store.st.users[id] = u
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	defer r.store.lock(ctx)()
	users := make([]domain.User, 0, len(r.store.st.users))
	for _, u := range r.store.st.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *UserRepo) ExistingUsernames(ctx context.Context, usernames []string) (map[string]bool, error) {
	defer r.store.lock(ctx)()
	existing := make(map[string]bool)
	for _, name := range usernames {
		if _, ok := r.store.st.byName[name]; ok {
			existing[name] = true
		}
	}
	return existing, nil
}
