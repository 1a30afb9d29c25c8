package oauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the base64-encoded JSON blob that rides the OAuth round trip and
// carries the shop identity back to the callback.
type State struct {
	Shop      string `json:"shop"`
	Popup     bool   `json:"popup,omitempty"`
	Nonce     string `json:"nonce,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

func NewState(shop string) State {
	return State{
		Shop:      shop,
		Popup:     true,
		Nonce:     uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
	}
}

func (s State) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("error encoding state: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeState accepts any of the common base64 alphabets since browsers and
// the provider both pass the value through untouched but encoders vary.
func DecodeState(raw string) (State, error) {
	if raw == "" {
		return State{}, fmt.Errorf("empty state parameter")
	}

	var data []byte
	var err error
	for _, encoding := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if data, err = encoding.DecodeString(raw); err == nil {
			break
		}
	}
	if err != nil {
		return State{}, fmt.Errorf("error decoding state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("error parsing state: %w", err)
	}
	if state.Shop == "" {
		return State{}, fmt.Errorf("state has no shop")
	}
	return state, nil
}
