package helpers

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestCheckInCodeRoundTrip(t *testing.T) {
	eventID, userID := uuid.New(), uuid.New()
	code := GenerateCheckInCode(eventID, userID, "secret")

	gotEvent, gotUser, err := ParseCheckInCode(code)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if gotEvent != eventID || gotUser != userID {
		t.Fatalf("parsed ids do not match: %s %s", gotEvent, gotUser)
	}
	if !ValidateCheckInCode(code, "secret") {
		t.Fatal("valid code rejected")
	}
}

func TestCheckInCodeRejectsTampering(t *testing.T) {
	code := GenerateCheckInCode(uuid.New(), uuid.New(), "secret")

	if ValidateCheckInCode(code, "other-secret") {
		t.Fatal("code accepted with wrong secret")
	}

	forged := strings.Replace(code, "user:", "user:0", 1)
	if ValidateCheckInCode(forged, "secret") {
		t.Fatal("tampered code accepted")
	}

	if _, _, err := ParseCheckInCode("not-a-code"); err == nil {
		t.Fatal("malformed code parsed")
	}
}
