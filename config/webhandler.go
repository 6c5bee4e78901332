package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"lautenbacher.net/gosignal/signal"
)

// RuntimeConfig is the part of the configuration that may be changed
// while the signal is running. Pins, transports and logging are left out.
type RuntimeConfig struct {
	Timing     signal.Delays    `yaml:"Timing" json:"Timing"`
	NightFlash NightFlashConfig `yaml:"NightFlash" json:"NightFlash"`
}

// ConfigHandler serves GET and POST on /api/config for the file cfile.
// A successful POST rewrites the file; the config watcher picks the
// change up from there.
func ConfigHandler(cfile string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			getConfigHandler(w, cfile)
		case http.MethodPost:
			setConfigHandler(w, r, cfile)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func getConfigHandler(w http.ResponseWriter, cfile string) {
	slog.Debug("Handling GET /api/config request")
	fullConfig, err := ReadConfig(cfile)
	if err != nil {
		slog.Error("Failed to read config file for API", "error", err)
		http.Error(w, "Failed to read configuration", http.StatusInternalServerError)
		return
	}

	runtimeConfig := RuntimeConfig{
		Timing:     fullConfig.Timing,
		NightFlash: fullConfig.NightFlash,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runtimeConfig); err != nil {
		slog.Error("Failed to encode runtime config to JSON", "error", err)
		http.Error(w, "Failed to serialize configuration", http.StatusInternalServerError)
	}
}

func setConfigHandler(w http.ResponseWriter, r *http.Request, cfile string) {
	slog.Info("Handling POST /api/config request")
	defer r.Body.Close()

	// Hardware and transport settings come from the file on disk. Fields
	// missing from the body keep their current values.
	fullConfig, err := ReadConfig(cfile)
	if err != nil {
		slog.Error("Failed to read existing config for update", "error", err)
		http.Error(w, "Failed to read configuration", http.StatusInternalServerError)
		return
	}

	newRuntimeConfig := RuntimeConfig{
		Timing:     fullConfig.Timing,
		NightFlash: fullConfig.NightFlash,
	}
	if err := json.NewDecoder(r.Body).Decode(&newRuntimeConfig); err != nil {
		slog.Error("Failed to decode incoming JSON", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fullConfig.Timing = newRuntimeConfig.Timing
	fullConfig.NightFlash = newRuntimeConfig.NightFlash

	if err := fullConfig.Validate(); err != nil {
		slog.Error("Validation failed for new config", "error", err)
		http.Error(w, fmt.Sprintf("Invalid configuration: %v", err), http.StatusBadRequest)
		return
	}

	if err := WriteConfig(cfile, fullConfig); err != nil {
		slog.Error("Failed to write updated config file", "error", err)
		http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
		return
	}

	slog.Info("Successfully updated config file, signal timing will reload.")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Configuration updated successfully.")
}
