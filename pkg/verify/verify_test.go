package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
	"github.com/devicelab-dev/locator-resolver/pkg/pagetest"
)

var testLoc = core.Locator{Kind: core.KindCSS, Value: "#login", Confidence: 1.0}

func TestVerify_ExactlyOneVisible(t *testing.T) {
	page := pagetest.New(pagetest.Config{})
	page.SetElements(testLoc, pagetest.VisibleElement("Login"))

	out, err := New().Verify(context.Background(), page, testLoc)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if out != Verified {
		t.Errorf("Verify() = %v, want Verified", out)
	}
}

func TestVerify_ZeroMatches(t *testing.T) {
	page := pagetest.New(pagetest.Config{})

	out, err := New().Verify(context.Background(), page, testLoc)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if out != Absent {
		t.Errorf("Verify() = %v, want Absent", out)
	}
}

func TestVerify_ManyMatches(t *testing.T) {
	page := pagetest.New(pagetest.Config{})
	page.SetElements(testLoc, pagetest.VisibleElement("A"), pagetest.VisibleElement("B"))

	out, err := New().Verify(context.Background(), page, testLoc)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if out != Ambiguous {
		t.Errorf("Verify() = %v, want Ambiguous", out)
	}
}

func TestVerify_HiddenMatchesDoNotCount(t *testing.T) {
	page := pagetest.New(pagetest.Config{})
	page.SetElements(testLoc,
		pagetest.VisibleElement("Login"),
		pagetest.HiddenElement("Login"),
		pagetest.HiddenElement("Login"))

	out, err := New().Verify(context.Background(), page, testLoc)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if out != Verified {
		t.Errorf("Verify() = %v, want Verified (hidden duplicates ignored)", out)
	}
}

func TestVerify_DisabledElementIsAbsent(t *testing.T) {
	page := pagetest.New(pagetest.Config{})
	page.SetElements(testLoc, pagetest.DisabledElement("Login"))

	out, err := New().Verify(context.Background(), page, testLoc)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if out != Absent {
		t.Errorf("Verify() = %v, want Absent for non-interactable element", out)
	}
}

func TestVerify_EngineFaultIsInfrastructure(t *testing.T) {
	page := pagetest.New(pagetest.Config{FindErr: errors.New("tab crashed")})

	_, err := New().Verify(context.Background(), page, testLoc)
	if err == nil {
		t.Fatal("Verify() = nil error, want infrastructure fault")
	}
	if !core.IsInfrastructure(err) {
		t.Errorf("Verify() error = %v, want infrastructure category", err)
	}
}

func TestOutcome_String(t *testing.T) {
	cases := map[Outcome]string{
		Verified:  "verified",
		Ambiguous: "ambiguous",
		Absent:    "absent",
	}
	for out, want := range cases {
		if got := out.String(); got != want {
			t.Errorf("String(%d) = %q, want %q", out, got, want)
		}
	}
}
