package yandex

import "encoding/json"

// Capability and unit identifiers of the smart home protocol.
const (
	DeviceType = "devices.types.media_device"

	OnOff  = "devices.capabilities.on_off"
	Range  = "devices.capabilities.range"
	Toggle = "devices.capabilities.toggle"

	InstanceOn     = "on"
	InstanceVolume = "volume"
	InstanceMute   = "mute"

	UnitPercent = "unit.percent"
)

// Action statuses and error codes.
const (
	StatusDone  = "DONE"
	StatusError = "ERROR"

	ErrNotSupported      = "NOT_SUPPORTED_IN_CURRENT_MODE"
	ErrInvalidValue      = "INVALID_VALUE"
	ErrDeviceNotFound    = "DEVICE_NOT_FOUND"
	ErrDeviceUnreachable = "DEVICE_UNREACHABLE"
	ErrInternal          = "INTERNAL_ERROR"
)

type Response struct {
	RequestID string `json:"request_id"`
	Payload   any    `json:"payload,omitempty"`
}

type DevicesPayload struct {
	UserID  string   `json:"user_id"`
	Devices []Device `json:"devices"`
}

type StatesPayload struct {
	Devices []DeviceState `json:"devices"`
}

type Device struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	Capabilities []Capability `json:"capabilities"`
	DeviceInfo   *DeviceInfo  `json:"device_info,omitempty"`
}

type DeviceInfo struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	SWVersion    string `json:"sw_version"`
}

type Capability struct {
	Type        string      `json:"type"`
	Retrievable bool        `json:"retrievable"`
	Parameters  *Parameters `json:"parameters,omitempty"`
}

type Parameters struct {
	Instance string    `json:"instance,omitempty"`
	Unit     string    `json:"unit,omitempty"`
	Range    *Interval `json:"range,omitempty"`
}

type Interval struct {
	Min       int `json:"min"`
	Max       int `json:"max"`
	Precision int `json:"precision"`
}

type DeviceState struct {
	ID           string            `json:"id"`
	Capabilities []CapabilityState `json:"capabilities,omitempty"`
	ActionResult *ActionResult     `json:"action_result,omitempty"`
	ErrorCode    string            `json:"error_code,omitempty"`
}

type CapabilityState struct {
	Type  string `json:"type"`
	State State  `json:"state"`
}

type State struct {
	Instance     string        `json:"instance"`
	Value        any           `json:"value,omitempty"`
	ActionResult *ActionResult `json:"action_result,omitempty"`
}

type ActionResult struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type actionRequest struct {
	Payload struct {
		Devices []struct {
			ID           string `json:"id"`
			Capabilities []struct {
				Type  string `json:"type"`
				State struct {
					Instance string          `json:"instance"`
					Value    json.RawMessage `json:"value"`
					Relative bool            `json:"relative"`
				} `json:"state"`
			} `json:"capabilities"`
		} `json:"devices"`
	} `json:"payload"`
}
