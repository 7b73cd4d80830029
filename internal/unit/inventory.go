package unit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trly/host-ops/internal/apperr"
	"github.com/trly/host-ops/internal/config"
	"github.com/trly/host-ops/internal/extract"
	"github.com/trly/host-ops/internal/log"
)

// unitNameColumn is the CSV column carrying the unit filename.
const unitNameColumn = 0

// portDigits is the required length of an extracted listen port.
const portDigits = 4

// InventoryBuilder turns the exported unit list into service units enriched
// with timer pairings and listen ports. The build is all-or-nothing: a single
// orphaned timer or missing unit file fails the whole inventory.
type InventoryBuilder struct {
	configProvider config.Provider
	logger         log.Logger
}

// NewInventoryBuilder creates an InventoryBuilder using the provided
// configuration and logger.
func NewInventoryBuilder(configProvider config.Provider, logger log.Logger) *InventoryBuilder {
	return &InventoryBuilder{configProvider: configProvider, logger: logger}
}

// Build reads the unit list at csvPath and returns the service units it
// names, in first-seen order. Timer units never appear in the result; they
// attach to their paired service instead.
func (b *InventoryBuilder) Build(csvPath string) ([]ServiceUnit, error) {
	names, err := b.readUnitNames(csvPath)
	if err != nil {
		return nil, err
	}

	services := make([]string, 0, len(names))
	serviceSet := make(map[string]bool, len(names))
	timers := make([]string, 0)
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, ServiceSuffix):
			services = append(services, name)
			serviceSet[name] = true
		case strings.HasSuffix(name, TimerSuffix):
			timers = append(timers, name)
		default:
			b.logger.Debug("Ignoring unit with unhandled suffix", "unit", name)
		}
	}

	timerByService := make(map[string]string, len(timers))
	for _, timer := range timers {
		service := ServiceForTimer(timer)
		if !serviceSet[service] {
			return nil, apperr.New(apperr.CodeOrphanedTimer,
				fmt.Sprintf("timer %s has no matching service %s in the unit list", timer, service))
		}
		timerByService[service] = timer
	}

	cfg := b.configProvider.GetConfig()
	units := make([]ServiceUnit, 0, len(services))
	for _, service := range services {
		unitPath := filepath.Join(cfg.UnitDir, service)
		if _, err := os.Stat(unitPath); err != nil {
			return nil, apperr.FromFS(err, "unit file "+unitPath, apperr.CodeServiceFileNotFound, apperr.CodeServiceFileDenied)
		}

		content, err := os.ReadFile(unitPath) //nolint:gosec // Path is rooted in the configured unit directory
		if err != nil {
			return nil, apperr.New(apperr.CodeServiceFileRead, "reading unit file "+unitPath).WithCause(err)
		}

		u := ServiceUnit{Filename: service, TimerFilename: timerByService[service]}
		if port, ok := extract.Port(string(content)); ok {
			if len(port) != portDigits {
				return nil, apperr.New(apperr.CodeInvalidPortFormat,
					fmt.Sprintf("unit %s: port %q is not a four digit port", service, port))
			}
			u.Port = port
		}
		units = append(units, u)
	}

	b.logger.Debug("Built unit inventory", "services", len(units), "timers", len(timers))
	return units, nil
}

// readUnitNames parses the CSV unit list and returns trimmed, de-duplicated
// unit filenames in first-seen order. The first row is a header and is
// skipped.
func (b *InventoryBuilder) readUnitNames(csvPath string) ([]string, error) {
	f, err := os.Open(csvPath) //nolint:gosec // Path comes from configuration, not request input
	if err != nil {
		return nil, apperr.FromFS(err, "unit list "+csvPath, apperr.CodeUnitListNotFound, apperr.CodeUnitListDenied)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.New(apperr.CodeUnitListRead, "parsing unit list "+csvPath).WithCause(err)
	}
	if len(records) > 0 {
		records = records[1:]
	}

	names := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if len(record) <= unitNameColumn {
			continue
		}
		name := strings.TrimSpace(record[unitNameColumn])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}
