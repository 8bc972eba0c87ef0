package notify

import (
	"net/url"
	"strings"
	"testing"
)

func TestBuildCategoriseLink(t *testing.T) {
	link := BuildCategoriseLink("rupeeflow://", "XYZ Store", 250.50, true, 42)

	if !strings.HasPrefix(link, "rupeeflow://categorise?") {
		t.Fatalf("unexpected link prefix: %s", link)
	}

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("failed to parse link: %v", err)
	}

	q := u.Query()
	if got := q.Get("receiver"); got != "XYZ Store" {
		t.Errorf("receiver = %q", got)
	}
	if got := q.Get("amount"); got != "250.5" {
		t.Errorf("amount = %q", got)
	}
	if got := q.Get("alwaysask"); got != "true" {
		t.Errorf("alwaysask = %q", got)
	}
	if got := q.Get("transactionId"); got != "42" {
		t.Errorf("transactionId = %q", got)
	}
}

func TestBuildCategoriseLinkDefaults(t *testing.T) {
	link := BuildCategoriseLink("", "shop@upi", 10, false, 1)

	if !strings.HasPrefix(link, DefaultScheme) {
		t.Errorf("expected default scheme, got %s", link)
	}
	if !strings.Contains(link, "alwaysask=false") {
		t.Errorf("expected alwaysask=false, got %s", link)
	}
	if !strings.Contains(link, "receiver=shop%40upi") {
		t.Errorf("expected escaped receiver, got %s", link)
	}
}
