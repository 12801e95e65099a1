package haproxy

import (
	"sort"
	"strings"

	"github.com/skillsenselab/hostagent/logger"
)

// Synthetic server names marking aggregate rows in the stats table.
const (
	aggregateBackend  = "BACKEND"
	aggregateFrontend = "FRONTEND"
)

// Stats table field names.
const (
	fieldProxyName     = "pxname"
	fieldServerName    = "svname"
	fieldStatus        = "status"
	fieldWeight        = "weight"
	fieldCheckStatus   = "check_status"
	fieldCheckDuration = "check_duration"
	fieldLastChange    = "lastchg"
	fieldDowntime      = "downtime"
	fieldAddress       = "addr"
	fieldCookie        = "cookie"
)

// ServerRecord is one stats-table row for a real server. Values stay as
// the raw table strings; numeric coercion is left to consumers.
type ServerRecord struct {
	Backend       string `json:"backend"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	Weight        string `json:"weight"`
	CheckStatus   string `json:"check_status"`
	CheckDuration string `json:"check_duration"`
	LastChange    string `json:"last_change"`
	Downtime      string `json:"downtime"`
	Address       string `json:"address"`
	Cookie        string `json:"cookie"`
}

// parseStatTable parses the CSV dump of a "show stat" command. The first
// line is a `#`-prefixed header naming the fields; every following
// non-blank, non-comment line is zipped positionally against it. A row
// whose field count mismatches the header is dropped with a diagnostic,
// never an error.
func parseStatTable(raw string, log *logger.Logger) []map[string]string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) == 0 {
		return nil
	}

	header := lines[0]
	if !strings.HasPrefix(header, "#") {
		log.Warn("stats response has no header line")
		return nil
	}

	fields := strings.Split(strings.TrimPrefix(header, "#"), ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	var rows []map[string]string
	for _, line := range lines[1:] {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		values := strings.Split(line, ",")
		if len(values) != len(fields) {
			log.Warn("dropping stats row with mismatched field count", logger.Fields(
				"fields", len(fields),
				"values", len(values),
			))
			continue
		}

		row := make(map[string]string, len(fields))
		for i, name := range fields {
			row[name] = strings.TrimSpace(values[i])
		}
		rows = append(rows, row)
	}

	return rows
}

// backendNames extracts backend names from rows whose synthetic server
// name is the BACKEND aggregate marker, deduped and sorted.
func backendNames(rows []map[string]string) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		if row[fieldServerName] == aggregateBackend {
			seen[row[fieldProxyName]] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// serverRecords projects the real-server rows of one backend, excluding
// the aggregate rows.
func serverRecords(rows []map[string]string, backend string) []ServerRecord {
	var servers []ServerRecord
	for _, row := range rows {
		if row[fieldProxyName] != backend {
			continue
		}
		svname := row[fieldServerName]
		if svname == aggregateBackend || svname == aggregateFrontend {
			continue
		}
		servers = append(servers, ServerRecord{
			Backend:       backend,
			Name:          svname,
			Status:        row[fieldStatus],
			Weight:        row[fieldWeight],
			CheckStatus:   row[fieldCheckStatus],
			CheckDuration: row[fieldCheckDuration],
			LastChange:    row[fieldLastChange],
			Downtime:      row[fieldDowntime],
			Address:       row[fieldAddress],
			Cookie:        row[fieldCookie],
		})
	}
	return servers
}
