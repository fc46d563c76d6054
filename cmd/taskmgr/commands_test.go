package main

import (
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
	"github.com/ShayCichocki/taskmgr/internal/state"
	"github.com/ShayCichocki/taskmgr/internal/taskconfig"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		role     string
		raw      bool
		wantType protocol.RequestType
		wantText string
		wantErr  bool
	}{
		{name: "worker id", args: []string{"worker-id"}, wantType: protocol.RequestQueryWorkerID},
		{name: "start", args: []string{"start"}, wantType: protocol.RequestStartSession},
		{name: "message", args: []string{"message", "hello", "there"}, role: "user", wantType: protocol.RequestAddMessage, wantText: "hello there"},
		{name: "raw", args: []string{`{"type":"start-session"}`}, raw: true, wantType: protocol.RequestStartSession},
		{name: "message without text", args: []string{"message"}, role: "user", wantErr: true},
		{name: "bad role", args: []string{"message", "hi"}, role: "robot", wantErr: true},
		{name: "unknown", args: []string{"restart"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := buildRequest(tt.args, tt.role, tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got payload %s", data)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildRequest failed: %v", err)
			}
			req, err := protocol.DecodeRequest(data)
			if err != nil {
				t.Fatalf("DecodeRequest(%s) failed: %v", data, err)
			}
			if req.Type != tt.wantType {
				t.Errorf("expected type %s, got %s", tt.wantType, req.Type)
			}
			if tt.wantText != "" && (req.Message == nil || req.Message.Text() != tt.wantText) {
				t.Errorf("expected text %q, got %+v", tt.wantText, req.Message)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{50 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("6f1c2a3b-1111-2222-3333-444455556666"); got != "6f1c2a3b" {
		t.Errorf("expected first uuid group, got %q", got)
	}
	if got := shortID("worker"); got != "worker" {
		t.Errorf("expected id unchanged, got %q", got)
	}
}

func TestEventDetail(t *testing.T) {
	long := strings.Repeat("x", 100)
	if got := eventDetail(state.Event{Detail: long}); len(got) != 80 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated detail, got %q", got)
	}
	if got := eventDetail(state.Event{Detail: "a\nb"}); got != "a b" {
		t.Errorf("expected newlines flattened, got %q", got)
	}
}

func TestProfileRows(t *testing.T) {
	registry := taskconfig.DefaultRegistry()
	rows := profileRows(registry)

	if len(rows) != len(registry.Names())+2 {
		t.Fatalf("expected header, one row per profile and generic, got %d rows", len(rows))
	}
	if rows[0][0] != "TASK" {
		t.Errorf("expected header row, got %v", rows[0])
	}
	last := rows[len(rows)-1]
	if last[0] != "(generic)" || last[2] != "0.7" {
		t.Errorf("expected generic row with temperature 0.7, got %v", last)
	}
}

func TestToYAML(t *testing.T) {
	view := planView{
		Document: map[string]any{"title": "Git Commit Assistant"},
		Policy:   taskconfig.Policy{PairGeneration: true},
	}
	data, err := toYAML(view)
	if err != nil {
		t.Fatalf("toYAML failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{"title: Git Commit Assistant", "pair_generation: true", "initial_message: null"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestParseChannelArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantAction  string
		wantChannel string
		wantData    string
		wantErr     bool
	}{
		{name: "open", args: []string{"open"}, wantAction: "open"},
		{name: "open with data", args: []string{"open", "hello", "there"}, wantAction: "open", wantData: "hello there"},
		{name: "close", args: []string{"close", "ch-1"}, wantAction: "close", wantChannel: "ch-1"},
		{name: "message", args: []string{"message", "ch-1", "hi"}, wantAction: "message", wantChannel: "ch-1", wantData: "hi"},
		{name: "message without data", args: []string{"message", "ch-1"}, wantAction: "message", wantChannel: "ch-1"},
		{name: "close without id", args: []string{"close"}, wantErr: true},
		{name: "close with extra", args: []string{"close", "a", "b"}, wantErr: true},
		{name: "message without id", args: []string{"message"}, wantErr: true},
		{name: "unknown", args: []string{"reopen"}, wantErr: true},
		{name: "empty", args: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := parseChannelArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", ev)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseChannelArgs failed: %v", err)
			}
			if ev.action != tt.wantAction || ev.channelID != tt.wantChannel || string(ev.data) != tt.wantData {
				t.Errorf("got %+v (data %q)", ev, ev.data)
			}
		})
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30d", want: 30 * 24 * time.Hour},
		{in: "0d", want: 0},
		{in: "12h", want: 12 * time.Hour},
		{in: " 90m ", want: 90 * time.Minute},
		{in: "-1h", wantErr: true},
		{in: "-2d", wantErr: true},
		{in: "xd", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseAge(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAge(%q) = %v, expected error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseAge(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
