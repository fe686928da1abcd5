package session

import (
	"encoding/json"
	"fmt"
)

// PortType is an AVAudioSessionPort identifier. Values are the strings the OS
// reports in AVAudioSessionPortDescription.portType.
type PortType string

const (
	PortLineIn          PortType = "LineIn"
	PortBuiltInMic      PortType = "MicrophoneBuiltIn"
	PortHeadsetMic      PortType = "MicrophoneWired"
	PortLineOut         PortType = "LineOut"
	PortHeadphones      PortType = "Headphones"
	PortBluetoothA2DP   PortType = "BluetoothA2DPOutput"
	PortBuiltInReceiver PortType = "Receiver"
	PortBuiltInSpeaker  PortType = "Speaker"
	PortHDMI            PortType = "HDMIOutput"
	PortAirPlay         PortType = "AirPlay"
	PortBluetoothLE     PortType = "BluetoothLE"
	PortBluetoothHFP    PortType = "BluetoothHFP"
	PortUSBAudio        PortType = "USBAudio"
	PortCarAudio        PortType = "CarAudio"
	PortVirtual         PortType = "Virtual"
	PortPCI             PortType = "PCI"
	PortFireWire        PortType = "Firewire"
	PortDisplayPort     PortType = "DisplayPort"
	PortAVB             PortType = "AVB"
	PortThunderbolt     PortType = "Thunderbolt"
)

// IsBluetooth reports whether the port is one of the Bluetooth transports.
func (p PortType) IsBluetooth() bool {
	return p == PortBluetoothA2DP || p == PortBluetoothHFP || p == PortBluetoothLE
}

// Port describes one input or output of the current route.
type Port struct {
	Type     PortType `json:"type"`
	Name     string   `json:"name"`
	UID      string   `json:"uid"`
	Channels int      `json:"channels"`
}

// Ports is a slice of Port with filter methods.
type Ports []Port

// ByType returns only ports of type t.
func (ports Ports) ByType(t PortType) Ports {
	var out Ports
	for _, p := range ports {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

// Has reports whether any port is of type t.
func (ports Ports) Has(t PortType) bool {
	for _, p := range ports {
		if p.Type == t {
			return true
		}
	}
	return false
}

// ByUID returns the port with the given UID, or nil.
func (ports Ports) ByUID(uid string) *Port {
	for i := range ports {
		if ports[i].UID == uid {
			return &ports[i]
		}
	}
	return nil
}

// Names returns the port names in order.
func (ports Ports) Names() []string {
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.Name)
	}
	return names
}

// Route is a snapshot of AVAudioSession.currentRoute.
type Route struct {
	Inputs  Ports `json:"inputs"`
	Outputs Ports `json:"outputs"`
}

// UsesBluetooth reports whether any output goes to a Bluetooth device.
func (r Route) UsesBluetooth() bool {
	for _, p := range r.Outputs {
		if p.Type.IsBluetooth() {
			return true
		}
	}
	return false
}

// routeResult is the JSON envelope the native side hands back.
type routeResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Route   Route  `json:"route"`
}

func parseRoute(data []byte) (Route, error) {
	var res routeResult
	if err := json.Unmarshal(data, &res); err != nil {
		return Route{}, fmt.Errorf("avfaudio: failed to parse route: %w", err)
	}
	if !res.Success {
		return Route{}, fmt.Errorf("avfaudio: route unavailable: %s", res.Error)
	}
	return res.Route, nil
}
