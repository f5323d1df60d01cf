package messages

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned by Decode for an unrecognised discriminator.
var ErrUnknownType = errors.New("unknown message type")

// Encode serialises m as a flat JSON object with a "type" field.
func Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", m.Kind(), err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten %s: %w", m.Kind(), err)
	}
	kind, _ := json.Marshal(m.Kind())
	fields["type"] = kind

	return json.Marshal(fields)
}

// Decode parses a message produced by Encode.
func Decode(data []byte) (Message, error) {
	var envelope struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}

	var m Message
	switch envelope.Type {
	case TypeCopyDetected:
		m = &CopyDetected{}
	case TypeShowWidget:
		m = &ShowWidget{}
	case TypeSaveToNotion:
		m = &SaveToNotion{}
	case TypeNotionConnect:
		m = &NotionConnect{}
	case TypeNotionDisconnect:
		m = &NotionDisconnect{}
	case TypeSearchPages:
		m = &SearchPages{}
	case TypeCreatePage:
		m = &CreatePage{}
	case TypeGetAuthState:
		m = &GetAuthState{}
	case TypeGetSettings:
		m = &GetSettings{}
	case TypeUpdateSettings:
		m = &UpdateSettings{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, envelope.Type)
	}

	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", envelope.Type, err)
	}
	return deref(m), nil
}

// deref turns the decoding pointer back into the value form callers switch on.
func deref(m Message) Message {
	switch v := m.(type) {
	case *CopyDetected:
		return *v
	case *ShowWidget:
		return *v
	case *SaveToNotion:
		return *v
	case *NotionConnect:
		return *v
	case *NotionDisconnect:
		return *v
	case *SearchPages:
		return *v
	case *CreatePage:
		return *v
	case *GetAuthState:
		return *v
	case *GetSettings:
		return *v
	case *UpdateSettings:
		return *v
	}
	return m
}
