// Package realtime carries coordinator traffic to displays over MQTT and
// to admin dashboards over WebSocket.
package realtime

import (
	"encoding/json"
	"fmt"
	stdsync "sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// MQTTChannel publishes display-bound messages (ticks, accepted commands,
// conductor changes) on per-device topics. It satisfies sync.Channel.
type MQTTChannel struct {
	client mqtt.Client

	mu      stdsync.RWMutex
	devices map[int]string // display id -> device id
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// NewMQTTChannel connects a single shared client to the broker. The paho
// client reconnects on its own after connection loss.
func NewMQTTChannel(brokerURL, clientID string) (*MQTTChannel, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTChannel{
		client:  client,
		devices: make(map[int]string),
	}, nil
}

// RegisterDisplay binds a display id to its device topic. Called when the
// device announces itself after pairing.
func (m *MQTTChannel) RegisterDisplay(displayID int, deviceID string) {
	m.mu.Lock()
	m.devices[displayID] = deviceID
	m.mu.Unlock()
	log.Info().Int("display_id", displayID).Str("device_id", deviceID).Msg("display registered on MQTT channel")
}

// UnregisterDisplay drops the binding, e.g. when the display unpairs.
func (m *MQTTChannel) UnregisterDisplay(displayID int) {
	m.mu.Lock()
	delete(m.devices, displayID)
	m.mu.Unlock()
}

// ConnectedDisplays returns the ids of displays with a registered device.
func (m *MQTTChannel) ConnectedDisplays() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int, 0, len(m.devices))
	for id := range m.devices {
		ids = append(ids, id)
	}
	return ids
}

// SendToDisplay publishes one message to the display's sync topic.
func (m *MQTTChannel) SendToDisplay(displayID int, message any) error {
	m.mu.RLock()
	deviceID, exists := m.devices[displayID]
	m.mu.RUnlock()
	if !exists {
		return fmt.Errorf("display %d not connected", displayID)
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message for display %d: %w", displayID, err)
	}

	topic := fmt.Sprintf("displays/%s/sync", deviceID)
	token := m.client.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to display %d: %w", displayID, token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTTChannel) Close() {
	m.client.Disconnect(250)
	log.Info().Msg("MQTT channel disconnected")
}
