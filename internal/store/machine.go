package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/unit"
)

const machineColumns = "id, public_id, name, ip, units, created_at, updated_at"

// SQLMachineRepository implements MachineRepository against a SQL database.
type SQLMachineRepository struct {
	db *sql.DB
}

// NewMachineRepository creates a SQL-backed machine repository.
func NewMachineRepository(db *sql.DB) MachineRepository {
	return &SQLMachineRepository{db: db}
}

// FindAll retrieves every machine, ordered by name.
func (r *SQLMachineRepository) FindAll() ([]Machine, error) {
	rows, err := r.db.Query("SELECT " + machineColumns + " FROM machines ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying machines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var machines []Machine
	for rows.Next() {
		machine, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		machines = append(machines, machine)
	}
	return machines, rows.Err()
}

// FindByPublicID retrieves one machine by its public identifier.
func (r *SQLMachineRepository) FindByPublicID(publicID string) (Machine, error) {
	row := r.db.QueryRow("SELECT "+machineColumns+" FROM machines WHERE public_id = ?", publicID)
	machine, err := scanMachine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Machine{}, apperr.New(apperr.CodeMachineNotFound, "no machine with id "+publicID)
	}
	return machine, err
}

// FindByIP retrieves the machine registered at the given address.
func (r *SQLMachineRepository) FindByIP(ip string) (Machine, error) {
	row := r.db.QueryRow("SELECT "+machineColumns+" FROM machines WHERE ip = ?", ip)
	machine, err := scanMachine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Machine{}, apperr.New(apperr.CodeMachineNotFound, "no machine at "+ip)
	}
	return machine, err
}

// Create inserts a machine and fills in its numeric id.
func (r *SQLMachineRepository) Create(machine *Machine) error {
	units, err := marshalUnits(machine.Units)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(
		"INSERT INTO machines (public_id, name, ip, units) VALUES (?, ?, ?, ?)",
		machine.PublicID, machine.Name, machine.IP, units)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.CodeValidation, "machine already registered: "+machine.IP)
		}
		return fmt.Errorf("inserting machine %s: %w", machine.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading machine insert id: %w", err)
	}
	machine.ID = id
	return nil
}

// ReplaceUnits overwrites the persisted unit sub-array for a machine. Units
// are discovery results, so the whole array is replaced on every sync.
func (r *SQLMachineRepository) ReplaceUnits(publicID string, units []unit.ServiceUnit) error {
	encoded, err := marshalUnits(units)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(
		"UPDATE machines SET units = ?, updated_at = CURRENT_TIMESTAMP WHERE public_id = ?",
		encoded, publicID)
	if err != nil {
		return fmt.Errorf("replacing machine units: %w", err)
	}
	return requireMachineRow(result, publicID)
}

// DeleteByPublicID removes a machine record.
func (r *SQLMachineRepository) DeleteByPublicID(publicID string) error {
	result, err := r.db.Exec("DELETE FROM machines WHERE public_id = ?", publicID)
	if err != nil {
		return fmt.Errorf("deleting machine: %w", err)
	}
	return requireMachineRow(result, publicID)
}

func requireMachineRow(result sql.Result, publicID string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.New(apperr.CodeMachineNotFound, "no machine with id "+publicID)
	}
	return nil
}

func scanMachine(scanner rowScanner) (Machine, error) {
	var machine Machine
	var units string
	err := scanner.Scan(&machine.ID, &machine.PublicID, &machine.Name, &machine.IP, &units,
		&machine.CreatedAt, &machine.UpdatedAt)
	if err != nil {
		return Machine{}, err
	}
	if err := json.Unmarshal([]byte(units), &machine.Units); err != nil {
		return Machine{}, fmt.Errorf("decoding units for machine %s: %w", machine.PublicID, err)
	}
	return machine, nil
}

func marshalUnits(units []unit.ServiceUnit) (string, error) {
	if units == nil {
		units = []unit.ServiceUnit{}
	}
	encoded, err := json.Marshal(units)
	if err != nil {
		return "", fmt.Errorf("encoding units: %w", err)
	}
	return string(encoded), nil
}
