// HTTP surface of the monitor: latest raw reading, projected sensor
// values and a websocket feed of fresh readings per device.
package monitorapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/NotCoffee418/open_inverter_monitor/pkg/coordinator"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/monitor"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/sensors"
	"github.com/NotCoffee418/open_inverter_monitor/pkg/types"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // LAN-only service, no origin restrictions
	},
}

type Server struct {
	monitor *monitor.Monitor

	// ws clients per device for broadcasting live readings
	wsClientsMutex sync.RWMutex
	wsClients      map[string]map[*websocket.Conn]bool
}

func NewServer(m *monitor.Monitor) *Server {
	return &Server{
		monitor:   m,
		wsClients: make(map[string]map[*websocket.Conn]bool),
	}
}

// RegisterHandlers wires the API routes onto a mux.
func (s *Server) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/devices", s.handleDevices)
	mux.HandleFunc("/latest", s.handleLatest)
	mux.HandleFunc("/sensors", s.handleSensors)
	mux.HandleFunc("/ws", s.handleWs)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]string{
		"message": "Open Inverter Monitor API",
		"status":  "running",
	})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	type deviceInfo struct {
		IpAddress       string    `json:"ip_address"`
		State           string    `json:"state"`
		CurrentInterval float64   `json:"current_interval_seconds"`
		LastUpdate      time.Time `json:"last_update,omitempty"`
	}

	devices := make([]deviceInfo, 0)
	for _, ip := range s.monitor.Devices() {
		coord := s.monitor.Get(ip)
		if coord == nil {
			continue
		}
		devices = append(devices, deviceInfo{
			IpAddress:       ip,
			State:           coord.State().String(),
			CurrentInterval: coord.CurrentInterval().Seconds(),
			LastUpdate:      coord.LastUpdateTime(),
		})
	}

	writeJson(w, http.StatusOK, devices)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.deviceCoordinator(w, r)
	if !ok {
		return
	}

	reading := coord.LastReading()
	if reading == nil {
		writeJson(w, http.StatusNotFound, map[string]string{
			"error": "No readings available yet",
		})
		return
	}

	writeJson(w, http.StatusOK, map[string]any{
		"data":      reading,
		"timestamp": coord.LastUpdateTime().Format(time.RFC3339),
	})
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.deviceCoordinator(w, r)
	if !ok {
		return
	}

	reading := coord.LastReading()
	if reading == nil {
		writeJson(w, http.StatusNotFound, map[string]string{
			"error": "No readings available yet",
		})
		return
	}

	response := map[string]any{
		"sensors": sensors.Project(reading),
	}
	if code, ok := sensors.AsFloat(reading["InverterStatus"]); ok {
		response["inverter_status"] = sensors.InverterStatusName(int(code))
	}

	writeJson(w, http.StatusOK, response)
}

func (s *Server) handleWs(w http.ResponseWriter, r *http.Request) {
	coord, ok := s.deviceCoordinator(w, r)
	if !ok {
		return
	}
	deviceIp := coord.DeviceIp()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	s.addWsClient(deviceIp, conn)

	// Send current reading immediately if available
	if reading := coord.LastReading(); reading != nil {
		conn.WriteMessage(websocket.TextMessage, reading.ToJsonBytes())
	}

	// Keep connection alive
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			s.removeWsClient(deviceIp, conn)
			break
		}
	}
}

// Broadcast pushes a reading to every websocket client of a device.
// Used as the monitor's onReading callback.
func (s *Server) Broadcast(deviceIp string, reading types.Reading) {
	s.wsClientsMutex.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients[deviceIp]))
	for client := range s.wsClients[deviceIp] {
		clients = append(clients, client)
	}
	s.wsClientsMutex.RUnlock()

	data := reading.ToJsonBytes()
	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.removeWsClient(deviceIp, client)
		}
	}
}

func (s *Server) addWsClient(deviceIp string, conn *websocket.Conn) {
	s.wsClientsMutex.Lock()
	if s.wsClients[deviceIp] == nil {
		s.wsClients[deviceIp] = make(map[*websocket.Conn]bool)
	}
	s.wsClients[deviceIp][conn] = true
	s.wsClientsMutex.Unlock()
}

func (s *Server) removeWsClient(deviceIp string, conn *websocket.Conn) {
	s.wsClientsMutex.Lock()
	delete(s.wsClients[deviceIp], conn)
	s.wsClientsMutex.Unlock()
	conn.Close()
}

// deviceCoordinator resolves the ?device= query param. With a single
// registered device the param may be omitted.
func (s *Server) deviceCoordinator(w http.ResponseWriter, r *http.Request) (*coordinator.Coordinator, bool) {
	deviceIp := r.URL.Query().Get("device")
	if deviceIp == "" {
		devices := s.monitor.Devices()
		if len(devices) == 1 {
			deviceIp = devices[0]
		} else {
			writeJson(w, http.StatusBadRequest, map[string]string{
				"error": "device query parameter required",
			})
			return nil, false
		}
	}

	coord := s.monitor.Get(deviceIp)
	if coord == nil {
		writeJson(w, http.StatusNotFound, map[string]string{
			"error": "unknown device",
		})
		return nil, false
	}
	return coord, true
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
