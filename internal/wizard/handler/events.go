package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"agenda/internal/wizard"
	apperrors "agenda/pkg/errors"
)

// EventRequest is the wire form of a wizard event.
type EventRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type eventDecoder func(payload []byte) (wizard.Event, error)

var eventDecoders = map[string]eventDecoder{
	wizard.SelectService{}.Name():      decodeAs[wizard.SelectService],
	wizard.SelectStaff{}.Name():        decodeAs[wizard.SelectStaff],
	wizard.SelectDate{}.Name():         decodeAs[wizard.SelectDate],
	wizard.SelectSlot{}.Name():         decodeAs[wizard.SelectSlot],
	wizard.SubmitCustomerInfo{}.Name(): decodeAs[wizard.SubmitCustomerInfo],
	wizard.ApplyAlternative{}.Name():   decodeAs[wizard.ApplyAlternative],
	wizard.Next{}.Name():               decodeAs[wizard.Next],
	wizard.Back{}.Name():               decodeAs[wizard.Back],
	wizard.Reset{}.Name():              decodeAs[wizard.Reset],
	wizard.Retry{}.Name():              decodeAs[wizard.Retry],
}

func decodeAs[T wizard.Event](payload []byte) (wizard.Event, error) {
	var ev T
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return ev, nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// decodeEvent turns req into the event the wizard dispatches on. A customer
// submission without its own key inherits the request's Idempotency-Key.
func decodeEvent(req EventRequest, idempotencyKey string) (wizard.Event, error) {
	decode, ok := eventDecoders[req.Type]
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown event type %q", req.Type))
	}

	ev, err := decode(req.Payload)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid %s payload: %v", req.Type, err))
	}

	if submit, ok := ev.(wizard.SubmitCustomerInfo); ok && submit.IdempotencyKey == "" {
		submit.IdempotencyKey = idempotencyKey
		return submit, nil
	}
	return ev, nil
}
