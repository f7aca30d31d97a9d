package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/repository"
	"github.com/guttosm/compliance-track/internal/service/cache"
)

// Grants are the active role names and permission keys behind a set of role ids.
type Grants struct {
	Roles       []string
	Permissions []string
}

// Access resolves the role ids carried by tokens into Grants.
type Access struct {
	roles       repository.RolesRepositoryInterface
	permissions repository.PermissionsRepositoryInterface
	cache       *cache.Store[Grants]
}

// NewAccess creates a resolver. A positive ttl caches grants per role set, so role
// changes take up to ttl to reach signed-in users.
func NewAccess(roles repository.RolesRepositoryInterface, permissions repository.PermissionsRepositoryInterface, ttl time.Duration) *Access {
	a := &Access{roles: roles, permissions: permissions}
	if ttl > 0 {
		a.cache = cache.New[Grants](cache.Options{Name: "access_grants", Capacity: 256, TTL: ttl, Shards: 4})
	}
	return a
}

// Resolve loads the roles and their permissions. Inactive roles and permissions grant nothing.
func (a *Access) Resolve(ctx context.Context, roleIDs []string) (Grants, error) {
	if len(roleIDs) == 0 {
		return Grants{Roles: []string{}}, nil
	}
	key := grantsKey(roleIDs)
	if a.cache != nil {
		if g, ok := a.cache.Get(key); ok {
			return g, nil
		}
	}

	roles, err := a.roles.FindByIDs(ctx, roleIDs)
	if err != nil {
		return Grants{}, fmt.Errorf("load roles: %w", err)
	}
	g := Grants{Roles: []string{}}
	var permissionIDs []string
	for _, r := range roles {
		if r == nil || !r.Active {
			continue
		}
		g.Roles = append(g.Roles, r.Name)
		permissionIDs = append(permissionIDs, r.Permissions...)
	}

	if len(permissionIDs) > 0 {
		slices.Sort(permissionIDs)
		perms, err := a.permissions.FindByIDs(ctx, slices.Compact(permissionIDs))
		if err != nil {
			return Grants{}, fmt.Errorf("load permissions: %w", err)
		}
		for _, p := range perms {
			if p != nil && p.Active {
				g.Permissions = append(g.Permissions, p.Key())
			}
		}
		slices.Sort(g.Permissions)
	}
	slices.Sort(g.Roles)

	if a.cache != nil {
		a.cache.Set(key, g)
	}
	return g, nil
}

// Stop releases the cache.
func (a *Access) Stop() {
	if a.cache != nil {
		a.cache.Stop()
	}
}

func grantsKey(roleIDs []string) string {
	ids := slices.Clone(roleIDs)
	slices.Sort(ids)
	return strings.Join(slices.Compact(ids), ",")
}

// accessCatalog lists the seeded permissions. Standard users hold the ones marked user;
// administrators hold all of them.
var accessCatalog = []struct {
	resource, action, description string
	user                          bool
}{
	{"calculations", "write", "Run migration calculations", true},
	{"chemicals", "read", "Search the chemical catalog", true},
	{"regulations", "read", "Browse regulations", true},
	{"chemicals", "write", "Maintain chemicals and their limits", false},
	{"regulations", "write", "Maintain regulations", false},
	{"history", "read", "Read and export the activity history", false},
}

// SeedAccess makes sure every permission of the catalog and the user and admin roles
// exist. Existing roles gain missing permissions and keep the rest.
func SeedAccess(ctx context.Context, roles repository.RolesRepositoryInterface, permissions repository.PermissionsRepositoryInterface) error {
	var all, user []string
	for _, entry := range accessCatalog {
		p := &model.Permission{
			Name:        model.PermissionKey(entry.resource, entry.action),
			Description: entry.description,
			Resource:    entry.resource,
			Action:      entry.action,
			Active:      true,
		}
		if err := permissions.Ensure(ctx, p); err != nil {
			return fmt.Errorf("seed permission %s: %w", p.Name, err)
		}
		all = append(all, p.ID.Hex())
		if entry.user {
			user = append(user, p.ID.Hex())
		}
	}

	for _, r := range []*model.Role{
		{Name: model.RoleUser, Description: "Runs calculations and browses the catalog", Permissions: user, Active: true},
		{Name: model.RoleAdmin, Description: "Maintains the catalog and reads the activity history", Permissions: all, Active: true},
	} {
		if err := roles.Ensure(ctx, r); err != nil {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}
	}
	return nil
}
