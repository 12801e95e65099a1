package eureka

import (
	"encoding/json"
	"net"
	"strconv"
	"strings"
)

// Instance is one registered application instance, normalized from the
// registry's wire format.
type Instance struct {
	AppName          string         `json:"app_name"`
	InstanceID       string         `json:"instance_id"`
	IP               string         `json:"ip"`
	Port             int            `json:"port"`
	Status           string         `json:"status"`
	HomePageURL      string         `json:"home_page_url"`
	StatusPageURL    string         `json:"status_page_url"`
	HealthCheckURL   string         `json:"health_check_url"`
	VIPAddress       string         `json:"vip_address"`
	SecureVIPAddress string         `json:"secure_vip_address"`
	Metadata         map[string]any `json:"metadata"`
}

// registryResponse mirrors the /eureka/apps JSON envelope.
type registryResponse struct {
	Applications struct {
		Application oneOrMany[wireApp] `json:"application"`
	} `json:"applications"`
}

type wireApp struct {
	Name     string                  `json:"name"`
	Instance oneOrMany[wireInstance] `json:"instance"`
}

type wireInstance struct {
	InstanceID       string         `json:"instanceId"`
	HostName         string         `json:"hostName"`
	IPAddr           string         `json:"ipAddr"`
	Status           string         `json:"status"`
	Port             wirePort       `json:"port"`
	HomePageURL      string         `json:"homePageUrl"`
	StatusPageURL    string         `json:"statusPageUrl"`
	HealthCheckURL   string         `json:"healthCheckUrl"`
	VIPAddress       string         `json:"vipAddress"`
	SecureVIPAddress string         `json:"secureVipAddress"`
	Metadata         map[string]any `json:"metadata"`
}

// oneOrMany accepts both a JSON array and a single object; Eureka emits
// either depending on cardinality.
type oneOrMany[T any] []T

func (l *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*l = many
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = []T{one}
	return nil
}

// wirePort accepts a bare number, a numeric string, or the enveloped
// form {"$": 8080, "@enabled": "true"}.
type wirePort int

func (p *wirePort) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*p = 0
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var envelope struct {
			Value json.Number `json:"$"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return err
		}
		n, err := envelope.Value.Int64()
		if err != nil {
			*p = 0
			return nil
		}
		*p = wirePort(n)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		if n, convErr := num.Int64(); convErr == nil {
			*p = wirePort(n)
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, convErr := strconv.Atoi(s); convErr == nil {
			*p = wirePort(n)
			return nil
		}
	}
	*p = 0
	return nil
}

// normalize converts a wire instance into the caller-facing model.
func (w wireInstance) normalize(appName string) Instance {
	return Instance{
		AppName:          appName,
		InstanceID:       w.InstanceID,
		IP:               extractIP(w),
		Port:             int(w.Port),
		Status:           w.Status,
		HomePageURL:      w.HomePageURL,
		StatusPageURL:    w.StatusPageURL,
		HealthCheckURL:   w.HealthCheckURL,
		VIPAddress:       w.VIPAddress,
		SecureVIPAddress: w.SecureVIPAddress,
		Metadata:         w.Metadata,
	}
}

// extractIP prefers an IP embedded in the instance ID (the common shape
// for containerized registrants, "10.0.0.5:billing:8080") and falls back
// to the ipAddr field.
func extractIP(w wireInstance) string {
	if prefix, _, found := strings.Cut(w.InstanceID, ":"); found && isIPv4(prefix) {
		return prefix
	}
	return w.IPAddr
}

func isIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}
