package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/distincto/journal/internal/flagx"
	"github.com/distincto/journal/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be written either as strings like "30s" or
// as integer nanoseconds.
type JsonConfig struct {
	DataDir             string         `json:"data_dir"`
	RemoteEndpointURL   string         `json:"remote_endpoint_url"`
	RemoteAPIKey        string         `json:"remote_api_key"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays cfg with values from the JSON file named by the
// -c/-config flag. No flag, no JSON. Panics on read or unmarshal errors;
// a broken config file should stop startup.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.RemoteEndpointURL != "" {
		cfg.RemoteEndpointURL = jc.RemoteEndpointURL
	}
	if jc.RemoteAPIKey != "" {
		cfg.RemoteAPIKey = jc.RemoteAPIKey
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
}
