package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/marketbill-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		project, name, want string
	}{
		{"proj", "billing", "projects/proj/topics/billing"},
		{"proj", " projects/other/topics/billing ", "projects/other/topics/billing"},
		{"", "billing", ""},
		{"proj", "  ", ""},
	}
	for _, tc := range cases {
		if got := topicResourceName(tc.project, tc.name); got != tc.want {
			t.Fatalf("topicResourceName(%q, %q) = %q, want %q", tc.project, tc.name, got, tc.want)
		}
	}
}

func TestNormalizeTopics(t *testing.T) {
	if got := normalizeTopics(nil); len(got) != 0 {
		t.Fatalf("expected no topics, got %v", got)
	}
	got := normalizeTopics([]string{" billing ", "", "billing", "audit"})
	if len(got) != 2 || got[0] != "billing" || got[1] != "audit" {
		t.Fatalf("unexpected topics %v", got)
	}
}

func TestNewClientRequiresProjectAndTopics(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, []string{"billing"}, nil); !errors.Is(err, errProjectIDRequired) {
		t.Fatalf("expected project id error, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "proj"}, []string{" "}, nil); !errors.Is(err, errNoTopics) {
		t.Fatalf("expected topics error, got %v", err)
	}
}

func TestNilClientHandles(t *testing.T) {
	var c *Client
	if c.Publisher("billing") != nil {
		t.Fatal("nil client must not return a publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Ping(context.Background()); !errors.Is(err, errClientClosed) {
		t.Fatalf("expected closed error, got %v", err)
	}
}
