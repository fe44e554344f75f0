package jsonstore

import (
	"context"
	"strings"

	"github.com/almnar0/almeshkat25/internal/apperr"
	"github.com/almnar0/almeshkat25/internal/models"
	"github.com/almnar0/almeshkat25/internal/repository"
	"github.com/almnar0/almeshkat25/internal/store"
)

type UserRepo struct{ s store.Store }

func NewUserRepo(s store.Store) repository.UserRepository { return &UserRepo{s: s} }

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	defer r.s.Lock(store.Users)()

	var users []models.User
	if err := r.s.Read(store.Users, &users); err != nil {
		return apperr.Wrap(apperr.StoreIO, "load users", err)
	}
	for _, x := range users {
		if strings.EqualFold(x.Email, u.Email) {
			return apperr.New(apperr.DuplicateEmail, "email already registered")
		}
	}
	users = append(users, *u)
	if err := r.s.Write(store.Users, users); err != nil {
		return apperr.Wrap(apperr.StoreIO, "save users", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var users []models.User
	if err := r.s.Read(store.Users, &users); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load users", err)
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var users []models.User
	if err := r.s.Read(store.Users, &users); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load users", err)
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(ctx context.Context, f repository.UserFilter) ([]models.User, error) {
	var users []models.User
	if err := r.s.Read(store.Users, &users); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load users", err)
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Active != nil && u.Active != *f.Active {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *UserRepo) Mutate(ctx context.Context, id string, fn func(*models.User) error) (*models.User, error) {
	defer r.s.Lock(store.Users)()

	var users []models.User
	if err := r.s.Read(store.Users, &users); err != nil {
		return nil, apperr.Wrap(apperr.StoreIO, "load users", err)
	}
	for i := range users {
		if users[i].ID != id {
			continue
		}
		if err := fn(&users[i]); err != nil {
			return nil, err
		}
		if err := r.s.Write(store.Users, users); err != nil {
			return nil, apperr.Wrap(apperr.StoreIO, "save users", err)
		}
		u := users[i]
		return &u, nil
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}
