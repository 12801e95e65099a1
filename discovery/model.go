package discovery

import "encoding/json"

// Normalized application statuses. Providers translate their native state
// vocabulary into these values.
const (
	StatusOnline      = "online"
	StatusOffline     = "offline"
	StatusStarting    = "starting"
	StatusRestarting  = "restarting"
	StatusMaintenance = "maintenance"
	StatusUnknown     = "unknown"
)

// Unknown marks a field a provider could not determine.
const Unknown = "unknown"

// Application is one discovered application instance.
type Application struct {
	Name      string
	Version   string
	Status    string
	StartTime string
	// Metadata holds provider-specific fields. They are flattened to the
	// top level when the application is serialized.
	Metadata map[string]any
}

// MarshalJSON flattens metadata into the top-level object, with metadata
// keys taking precedence over the fixed fields on collision.
func (a Application) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 4+len(a.Metadata))
	out["name"] = a.Name
	out["version"] = a.Version
	out["status"] = a.Status
	out["start_time"] = a.StartTime
	for k, v := range a.Metadata {
		out[k] = v
	}
	return json.Marshal(out)
}
