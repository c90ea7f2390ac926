package domain

import "testing"

func TestSlackSessionID(t *testing.T) {
	if got := SlackSessionID("U001"); got != "slack:U001" {
		t.Fatalf("SlackSessionID = %q", got)
	}
}
