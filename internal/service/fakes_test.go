package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/identity-access/internal/model"
	"github.com/iliyamo/identity-access/internal/repository"
)

// In-memory fakes standing in for the MySQL repositories, the Redis
// warehouse and the queue-backed mailer. They reproduce the contracts
// the services rely on: unique constraints, lookup-miss sentinels and
// set semantics on the role/permission link.

var fakeRoleNames = map[uint8]string{1: "user", 2: "admin"}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.users {
		if other.Username == u.Username || strings.EqualFold(other.Email, u.Email) {
			return model.User{}, repository.ErrDuplicateCredentials
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(u.Email)
	u.RoleName = fakeRoleNames[u.RoleID]
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserStore) GetByLogin(_ context.Context, login string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == login || strings.EqualFold(u.Email, login) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) List(_ context.Context, p repository.ListParams) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.User{}
	for _, u := range f.users {
		if p.FilterByRole != "" && u.RoleName != p.FilterByRole {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserStore) Update(_ context.Context, id uuid.UUID, upd repository.UserUpdate) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	if upd.Username != nil {
		for otherID, other := range f.users {
			if otherID != id && other.Username == *upd.Username {
				return model.User{}, repository.ErrDuplicateCredentials
			}
		}
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		for otherID, other := range f.users {
			if otherID != id && strings.EqualFold(other.Email, *upd.Email) {
				return model.User{}, repository.ErrDuplicateCredentials
			}
		}
		u.Email = strings.ToLower(*upd.Email)
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Surname != nil {
		u.Surname = *upd.Surname
	}
	if upd.ImageURL != nil {
		u.ImageURL = *upd.ImageURL
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.RoleID != nil {
		u.RoleID = *upd.RoleID
		u.RoleName = fakeRoleNames[*upd.RoleID]
	}
	if upd.IsVerified != nil {
		u.IsVerified = *upd.IsVerified
	}
	if upd.IsBlocked != nil {
		u.IsBlocked = *upd.IsBlocked
	}
	u.UpdatedAt = time.Now().UTC()
	f.users[id] = u
	return u, nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

type fakeWarehouse struct {
	mu     sync.Mutex
	tokens map[string]string
	down   bool
}

func newFakeWarehouse() *fakeWarehouse {
	return &fakeWarehouse{tokens: map[string]string{}}
}

var errWarehouseDown = errors.New("warehouse down")

func (f *fakeWarehouse) Record(_ context.Context, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errWarehouseDown
	}
	f.tokens[userID] = token
	return nil
}

func (f *fakeWarehouse) Exists(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, errWarehouseDown
	}
	_, ok := f.tokens[userID]
	return ok, nil
}

func (f *fakeWarehouse) Fresh(_ context.Context, userID, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return false, errWarehouseDown
	}
	return f.tokens[userID] == token, nil
}

func (f *fakeWarehouse) Revoke(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return errWarehouseDown
	}
	delete(f.tokens, userID)
	return nil
}

type fakeMailer struct {
	mu            sync.Mutex
	confirmations map[string]string // email -> last confirmation token
	resets        map[string]string // email -> last reset token
	fail          bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{confirmations: map[string]string{}, resets: map[string]string{}}
}

var errMailerDown = errors.New("mailer down")

func (f *fakeMailer) SendConfirmation(_ context.Context, to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errMailerDown
	}
	f.confirmations[to] = token
	return nil
}

func (f *fakeMailer) SendReset(_ context.Context, to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errMailerDown
	}
	f.resets[to] = token
	return nil
}

type fakeRoleStore struct {
	mu     sync.Mutex
	nextID uint8
	roles  map[uint8]model.Role
	links  map[uint8]map[uint8]bool // role id -> permission ids
	perms  *fakePermissionStore
}

func newFakeRoleStore(perms *fakePermissionStore) *fakeRoleStore {
	return &fakeRoleStore{nextID: 1, roles: map[uint8]model.Role{}, links: map[uint8]map[uint8]bool{}, perms: perms}
}

func (f *fakeRoleStore) Create(_ context.Context, name string) (model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == name {
			return model.Role{}, repository.ErrDuplicateRole
		}
	}
	role := model.Role{ID: f.nextID, Name: name, Permissions: []model.Permission{}}
	f.roles[role.ID] = role
	f.links[role.ID] = map[uint8]bool{}
	f.nextID++
	return role, nil
}

func (f *fakeRoleStore) GetByID(_ context.Context, id uint8) (model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[id]
	if !ok {
		return model.Role{}, repository.ErrRoleNotFound
	}
	return f.loadPermissions(role), nil
}

func (f *fakeRoleStore) GetByName(_ context.Context, name string) (model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, role := range f.roles {
		if role.Name == name {
			return f.loadPermissions(role), nil
		}
	}
	return model.Role{}, repository.ErrRoleNotFound
}

func (f *fakeRoleStore) List(_ context.Context, _ repository.ListParams) ([]model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Role{}
	for _, role := range f.roles {
		out = append(out, f.loadPermissions(role))
	}
	return out, nil
}

func (f *fakeRoleStore) Update(_ context.Context, id uint8, name string) (model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[id]
	if !ok {
		return model.Role{}, repository.ErrRoleNotFound
	}
	role.Name = name
	f.roles[id] = role
	return f.loadPermissions(role), nil
}

func (f *fakeRoleStore) Delete(_ context.Context, id uint8) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[id]; !ok {
		return false, nil
	}
	delete(f.roles, id)
	delete(f.links, id)
	return true, nil
}

func (f *fakeRoleStore) AddPermission(_ context.Context, roleID, permissionID uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.links[roleID][permissionID] {
		return repository.ErrDuplicatePermission
	}
	f.links[roleID][permissionID] = true
	return nil
}

func (f *fakeRoleStore) RemovePermission(_ context.Context, roleID, permissionID uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.links[roleID][permissionID] {
		return repository.ErrPermissionNotFound
	}
	delete(f.links[roleID], permissionID)
	return nil
}

func (f *fakeRoleStore) loadPermissions(role model.Role) model.Role {
	role.Permissions = []model.Permission{}
	for permID := range f.links[role.ID] {
		if p, ok := f.perms.byID(permID); ok {
			role.Permissions = append(role.Permissions, p)
		}
	}
	return role
}

type fakePermissionStore struct {
	mu     sync.Mutex
	nextID uint8
	perms  map[uint8]model.Permission
}

func newFakePermissionStore() *fakePermissionStore {
	return &fakePermissionStore{nextID: 1, perms: map[uint8]model.Permission{}}
}

func (f *fakePermissionStore) byID(id uint8) (model.Permission, bool) {
	p, ok := f.perms[id]
	return p, ok
}

func (f *fakePermissionStore) Create(_ context.Context, name string) (model.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.perms {
		if p.Name == name {
			return model.Permission{}, repository.ErrDuplicatePermission
		}
	}
	p := model.Permission{ID: f.nextID, Name: name}
	f.perms[p.ID] = p
	f.nextID++
	return p, nil
}

func (f *fakePermissionStore) GetByID(_ context.Context, id uint8) (model.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.perms[id]
	if !ok {
		return model.Permission{}, repository.ErrPermissionNotFound
	}
	return p, nil
}

func (f *fakePermissionStore) GetByName(_ context.Context, name string) (model.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.perms {
		if p.Name == name {
			return p, nil
		}
	}
	return model.Permission{}, repository.ErrPermissionNotFound
}

func (f *fakePermissionStore) List(_ context.Context, _ repository.ListParams) ([]model.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Permission{}
	for _, p := range f.perms {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePermissionStore) Update(_ context.Context, id uint8, name string) (model.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.perms[id]
	if !ok {
		return model.Permission{}, repository.ErrPermissionNotFound
	}
	p.Name = name
	f.perms[id] = p
	return p, nil
}

func (f *fakePermissionStore) Delete(_ context.Context, id uint8) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.perms[id]; !ok {
		return false, nil
	}
	delete(f.perms, id)
	return true, nil
}
