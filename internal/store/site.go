package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/trly/host-ops/internal/apperr"
)

const siteColumns = "id, public_id, server_name, framework, config_path, listen_port, upstream_ip, machine_public_id, created_at, updated_at"

// SQLSiteRepository implements SiteRepository against a SQL database.
type SQLSiteRepository struct {
	db *sql.DB
}

// NewSiteRepository creates a SQL-backed site repository.
func NewSiteRepository(db *sql.DB) SiteRepository {
	return &SQLSiteRepository{db: db}
}

// FindAll retrieves every site, ordered by server name.
func (r *SQLSiteRepository) FindAll() ([]Site, error) {
	rows, err := r.db.Query("SELECT " + siteColumns + " FROM sites ORDER BY server_name")
	if err != nil {
		return nil, fmt.Errorf("querying sites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sites []Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// FindByPublicID retrieves one site by its public identifier.
func (r *SQLSiteRepository) FindByPublicID(publicID string) (Site, error) {
	row := r.db.QueryRow("SELECT "+siteColumns+" FROM sites WHERE public_id = ?", publicID)
	site, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Site{}, apperr.New(apperr.CodeSiteNotFound, "no site with id "+publicID)
	}
	return site, err
}

// FindByServerName retrieves one site by its primary server name.
func (r *SQLSiteRepository) FindByServerName(serverName string) (Site, error) {
	row := r.db.QueryRow("SELECT "+siteColumns+" FROM sites WHERE server_name = ?", serverName)
	site, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Site{}, apperr.New(apperr.CodeSiteNotFound, "no site named "+serverName)
	}
	return site, err
}

// Create inserts a site and fills in its numeric id. A server name collision
// surfaces as SITE_ALREADY_EXISTS.
func (r *SQLSiteRepository) Create(site *Site) error {
	result, err := r.db.Exec(`
		INSERT INTO sites (public_id, server_name, framework, config_path, listen_port, upstream_ip, machine_public_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, site.PublicID, site.ServerName, site.Framework, site.ConfigPath, site.ListenPort, site.UpstreamIP, site.MachinePublicID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.CodeSiteAlreadyExists, "site already exists: "+site.ServerName)
		}
		return fmt.Errorf("inserting site %s: %w", site.ServerName, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading site insert id: %w", err)
	}
	site.ID = id
	return nil
}

// UpdateConfigPath points a site at a new config file.
func (r *SQLSiteRepository) UpdateConfigPath(publicID, configPath string) error {
	result, err := r.db.Exec(
		"UPDATE sites SET config_path = ?, updated_at = CURRENT_TIMESTAMP WHERE public_id = ?",
		configPath, publicID)
	if err != nil {
		return fmt.Errorf("updating site config path: %w", err)
	}
	return requireSiteRow(result, publicID)
}

// Touch bumps a site's updated timestamp after a committed config change.
func (r *SQLSiteRepository) Touch(publicID string) error {
	result, err := r.db.Exec(
		"UPDATE sites SET updated_at = CURRENT_TIMESTAMP WHERE public_id = ?", publicID)
	if err != nil {
		return fmt.Errorf("touching site: %w", err)
	}
	return requireSiteRow(result, publicID)
}

// DeleteByPublicID removes a site record.
func (r *SQLSiteRepository) DeleteByPublicID(publicID string) error {
	result, err := r.db.Exec("DELETE FROM sites WHERE public_id = ?", publicID)
	if err != nil {
		return fmt.Errorf("deleting site: %w", err)
	}
	return requireSiteRow(result, publicID)
}

func requireSiteRow(result sql.Result, publicID string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.New(apperr.CodeSiteNotFound, "no site with id "+publicID)
	}
	return nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(scanner rowScanner) (Site, error) {
	var site Site
	err := scanner.Scan(&site.ID, &site.PublicID, &site.ServerName, &site.Framework, &site.ConfigPath,
		&site.ListenPort, &site.UpstreamIP, &site.MachinePublicID, &site.CreatedAt, &site.UpdatedAt)
	return site, err
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
