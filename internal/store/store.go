// Package store persists site and machine records in SQLite. Rows carry a
// numeric id for the database's benefit only; everything that crosses the API
// boundary is keyed by the opaque public identifier.
package store

import (
	"time"

	"github.com/trly/host-ops/internal/unit"
)

// Site is one persisted vhost record, identified by its primary server name.
type Site struct {
	ID              int64     `json:"-" db:"id"`
	PublicID        string    `json:"publicId" db:"public_id"`
	ServerName      string    `json:"serverName" db:"server_name"`
	Framework       string    `json:"framework" db:"framework"`
	ConfigPath      string    `json:"configPath" db:"config_path"`
	ListenPort      string    `json:"listenPort,omitempty" db:"listen_port"`
	UpstreamIP      string    `json:"upstreamIp,omitempty" db:"upstream_ip"`
	MachinePublicID string    `json:"machinePublicId,omitempty" db:"machine_public_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Machine is one persisted application host. Units are ephemeral discovery
// results persisted as a JSON sub-array on the row, replaced wholesale on
// every sync.
type Machine struct {
	ID        int64              `json:"-" db:"id"`
	PublicID  string             `json:"publicId" db:"public_id"`
	Name      string             `json:"name" db:"name"`
	IP        string             `json:"ip" db:"ip"`
	Units     []unit.ServiceUnit `json:"units" db:"units"`
	CreatedAt time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" db:"updated_at"`
}

// SiteRepository defines data access for site records.
type SiteRepository interface {
	FindAll() ([]Site, error)
	FindByPublicID(publicID string) (Site, error)
	FindByServerName(serverName string) (Site, error)
	Create(site *Site) error
	UpdateConfigPath(publicID, configPath string) error
	Touch(publicID string) error
	DeleteByPublicID(publicID string) error
}

// MachineRepository defines data access for machine records.
type MachineRepository interface {
	FindAll() ([]Machine, error)
	FindByPublicID(publicID string) (Machine, error)
	FindByIP(ip string) (Machine, error)
	Create(machine *Machine) error
	ReplaceUnits(publicID string, units []unit.ServiceUnit) error
	DeleteByPublicID(publicID string) error
}
