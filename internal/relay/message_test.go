package relay

import (
	"encoding/json"
	"testing"
)

func TestParseReplies(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{
			name: "bare single object",
			body: `{"message":"Olá! Como posso ajudar?"}`,
			want: 1,
		},
		{
			name: "array of singles",
			body: `[{"message":"a","typeMessage":"text"},{"message":"b","typeMessage":"text"}]`,
			want: 2,
		},
		{
			name: "array with batch reply",
			body: `[{"messages":[{"message":"a","typeMessage":"text"},{"message":"b","typeMessage":"audio"}]}]`,
			want: 1,
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: true,
		},
		{
			name:    "empty array",
			body:    `[]`,
			wantErr: true,
		},
		{
			name:    "not json",
			body:    `Workflow was started but then HTML happened <html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replies, err := ParseReplies([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReplies() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(replies) != tt.want {
				t.Errorf("ParseReplies() returned %d replies, want %d", len(replies), tt.want)
			}
		})
	}
}

func TestParseReplies_BatchOrdering(t *testing.T) {
	body := `{"messages":[{"message":"first","typeMessage":"text"},{"message":"second","typeMessage":"text"},{"message":"third","typeMessage":"text"}]}`
	replies, err := ParseReplies([]byte(body))
	if err != nil {
		t.Fatalf("ParseReplies() error = %v", err)
	}
	if !replies[0].IsBatch() {
		t.Fatal("expected a batch reply")
	}
	want := []string{"first", "second", "third"}
	for i, item := range replies[0].Messages {
		if item.Message != want[i] {
			t.Errorf("Messages[%d] = %q, want %q (ordering is significant)", i, item.Message, want[i])
		}
	}
}

func TestReply_MarshalShapes(t *testing.T) {
	single := Reply{Message: "oi", TypeMessage: KindText}
	data, err := json.Marshal(single)
	if err != nil {
		t.Fatalf("Marshal single: %v", err)
	}
	if string(data) != `{"message":"oi","typeMessage":"text"}` {
		t.Errorf("single reply marshals as %s", data)
	}

	bare := Reply{Message: "oi"}
	data, err = json.Marshal(bare)
	if err != nil {
		t.Fatalf("Marshal bare single: %v", err)
	}
	if string(data) != `{"message":"oi"}` {
		t.Errorf("bare single reply marshals as %s, typeMessage must be omitted", data)
	}

	batch := Reply{Messages: []ReplyItem{{Message: "a", TypeMessage: KindText}}}
	data, err = json.Marshal(batch)
	if err != nil {
		t.Fatalf("Marshal batch: %v", err)
	}
	if string(data) != `{"messages":[{"message":"a","typeMessage":"text"}]}` {
		t.Errorf("batch reply marshals as %s", data)
	}
}

func TestReply_PassthroughPreservesWireShape(t *testing.T) {
	// The route handler returns remote replies verbatim; decoding and
	// re-encoding must not change the shape the client sees.
	wire := `[{"message":"Olá! Como posso ajudar?","typeMessage":"text"}]`
	replies, err := ParseReplies([]byte(wire))
	if err != nil {
		t.Fatalf("ParseReplies() error = %v", err)
	}
	out, err := json.Marshal(replies)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != wire {
		t.Errorf("passthrough changed the wire shape:\n in: %s\nout: %s", wire, out)
	}
}
