package relay

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Message kinds. Inbound requests may only carry text or audio; the richer
// kinds appear in webhook replies.
const (
	KindText     = "text"
	KindAudio    = "audio"
	KindImage    = "image"
	KindDocument = "document"
	KindVideo    = "video"
)

// InboundRequest is the wire shape received from the chat UI.
type InboundRequest struct {
	Agent       string `json:"agent" binding:"required"`
	Message     string `json:"message" binding:"required"`
	TypeMessage string `json:"typeMessage" binding:"required"`
}

// OutboundMessage is the normalized payload forwarded to a webhook endpoint.
type OutboundMessage struct {
	Agent       string `json:"agent"`
	Message     string `json:"message"`
	TypeMessage string `json:"typeMessage"`
}

// ReplyItem is one message within a batch reply. Ordering is significant;
// the client renders item N+1 after item N.
type ReplyItem struct {
	Message     string `json:"message"`
	TypeMessage string `json:"typeMessage"`
}

// Reply is one element of a webhook response. The wire format is duck-typed:
// either a single message object {"message": ...} or an ordered batch
// {"messages": [...]}. Reply models both shapes as a tagged union selected
// by whether Messages is set, and round-trips the original wire shape.
type Reply struct {
	Message     string
	TypeMessage string
	Messages    []ReplyItem
}

// IsBatch reports whether this reply carries an ordered message sequence.
func (r Reply) IsBatch() bool { return r.Messages != nil }

func (r *Reply) UnmarshalJSON(data []byte) error {
	var probe struct {
		Message     string      `json:"message"`
		TypeMessage string      `json:"typeMessage"`
		Messages    []ReplyItem `json:"messages"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	r.Message = probe.Message
	r.TypeMessage = probe.TypeMessage
	r.Messages = probe.Messages
	return nil
}

func (r Reply) MarshalJSON() ([]byte, error) {
	if r.Messages != nil {
		return json.Marshal(struct {
			Messages []ReplyItem `json:"messages"`
		}{r.Messages})
	}
	return json.Marshal(struct {
		Message     string `json:"message"`
		TypeMessage string `json:"typeMessage,omitempty"`
	}{r.Message, r.TypeMessage})
}

// ParseReplies decodes a webhook response body. Endpoints answer with either
// a bare reply object or an array of them; both are normalized to a slice.
func ParseReplies(data []byte) ([]Reply, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}

	if trimmed[0] == '[' {
		var replies []Reply
		if err := json.Unmarshal(trimmed, &replies); err != nil {
			return nil, err
		}
		if len(replies) == 0 {
			return nil, errors.New("empty reply array")
		}
		return replies, nil
	}

	var single Reply
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []Reply{single}, nil
}
