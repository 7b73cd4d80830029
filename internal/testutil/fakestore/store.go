// Package fakestore provides in-memory repository fakes for testing.
package fakestore

import (
	"sync"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/store"
	"github.com/trly/host-ops/internal/unit"
)

// SiteRepo is an in-memory store.SiteRepository. Error fields, when set, are
// returned by the matching methods instead of touching the data.
type SiteRepo struct {
	mu        sync.Mutex
	sites     []store.Site
	created   []store.Site
	nextID    int64
	CreateErr error
	LookupErr error
}

// NewSiteRepo creates a SiteRepo seeded with the given sites.
func NewSiteRepo(seed ...store.Site) *SiteRepo {
	r := &SiteRepo{nextID: int64(len(seed)) + 1}
	r.sites = append(r.sites, seed...)
	return r
}

// FindAll returns a copy of all sites.
func (r *SiteRepo) FindAll() ([]store.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.LookupErr != nil {
		return nil, r.LookupErr
	}
	out := make([]store.Site, len(r.sites))
	copy(out, r.sites)
	return out, nil
}

// FindByPublicID returns the site with the given public id.
func (r *SiteRepo) FindByPublicID(publicID string) (store.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.LookupErr != nil {
		return store.Site{}, r.LookupErr
	}
	for _, s := range r.sites {
		if s.PublicID == publicID {
			return s, nil
		}
	}
	return store.Site{}, apperr.New(apperr.CodeSiteNotFound, "no site with id "+publicID)
}

// FindByServerName returns the site with the given primary server name.
func (r *SiteRepo) FindByServerName(serverName string) (store.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.LookupErr != nil {
		return store.Site{}, r.LookupErr
	}
	for _, s := range r.sites {
		if s.ServerName == serverName {
			return s, nil
		}
	}
	return store.Site{}, apperr.New(apperr.CodeSiteNotFound, "no site named "+serverName)
}

// Create appends a site, rejecting duplicate server names.
func (r *SiteRepo) Create(site *store.Site) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	for _, s := range r.sites {
		if s.ServerName == site.ServerName {
			return apperr.New(apperr.CodeSiteAlreadyExists, "site already exists: "+site.ServerName)
		}
	}
	site.ID = r.nextID
	r.nextID++
	r.sites = append(r.sites, *site)
	r.created = append(r.created, *site)
	return nil
}

// UpdateConfigPath points a site at a new config file.
func (r *SiteRepo) UpdateConfigPath(publicID, configPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sites {
		if r.sites[i].PublicID == publicID {
			r.sites[i].ConfigPath = configPath
			return nil
		}
	}
	return apperr.New(apperr.CodeSiteNotFound, "no site with id "+publicID)
}

// Touch is a no-op for a present site.
func (r *SiteRepo) Touch(publicID string) error {
	_, err := r.FindByPublicID(publicID)
	return err
}

// DeleteByPublicID removes a site.
func (r *SiteRepo) DeleteByPublicID(publicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sites {
		if r.sites[i].PublicID == publicID {
			r.sites = append(r.sites[:i], r.sites[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.CodeSiteNotFound, "no site with id "+publicID)
}

// Created returns the sites added through Create, in insertion order.
func (r *SiteRepo) Created() []store.Site {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]store.Site, len(r.created))
	copy(out, r.created)
	return out
}

// MachineRepo is an in-memory store.MachineRepository.
type MachineRepo struct {
	mu       sync.Mutex
	machines []store.Machine
	nextID   int64
}

// NewMachineRepo creates a MachineRepo seeded with the given machines.
func NewMachineRepo(seed ...store.Machine) *MachineRepo {
	r := &MachineRepo{nextID: int64(len(seed)) + 1}
	r.machines = append(r.machines, seed...)
	return r
}

// FindAll returns a copy of all machines.
func (r *MachineRepo) FindAll() ([]store.Machine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]store.Machine, len(r.machines))
	copy(out, r.machines)
	return out, nil
}

// FindByPublicID returns the machine with the given public id.
func (r *MachineRepo) FindByPublicID(publicID string) (store.Machine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.machines {
		if m.PublicID == publicID {
			return m, nil
		}
	}
	return store.Machine{}, apperr.New(apperr.CodeMachineNotFound, "no machine with id "+publicID)
}

// FindByIP returns the machine registered at the given address.
func (r *MachineRepo) FindByIP(ip string) (store.Machine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.machines {
		if m.IP == ip {
			return m, nil
		}
	}
	return store.Machine{}, apperr.New(apperr.CodeMachineNotFound, "no machine at "+ip)
}

// Create appends a machine.
func (r *MachineRepo) Create(machine *store.Machine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.machines {
		if m.IP == machine.IP {
			return apperr.New(apperr.CodeValidation, "machine already registered: "+machine.IP)
		}
	}
	machine.ID = r.nextID
	r.nextID++
	r.machines = append(r.machines, *machine)
	return nil
}

// ReplaceUnits overwrites the unit sub-array of a machine.
func (r *MachineRepo) ReplaceUnits(publicID string, units []unit.ServiceUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.machines {
		if r.machines[i].PublicID == publicID {
			r.machines[i].Units = units
			return nil
		}
	}
	return apperr.New(apperr.CodeMachineNotFound, "no machine with id "+publicID)
}

// DeleteByPublicID removes a machine.
func (r *MachineRepo) DeleteByPublicID(publicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.machines {
		if r.machines[i].PublicID == publicID {
			r.machines = append(r.machines[:i], r.machines[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.CodeMachineNotFound, "no machine with id "+publicID)
}
