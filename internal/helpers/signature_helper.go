package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Check-in codes are embedded in booking QR images and validated by the
// organizer at the door. The HMAC binds the code to one (event, user) pair.

func checkInSignature(eventID, userID uuid.UUID, secretKey string) string {
	data := fmt.Sprintf("%s:%s", eventID.String(), userID.String())
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func GenerateCheckInCode(eventID, userID uuid.UUID, secretKey string) string {
	return fmt.Sprintf("event:%s;user:%s;signature:%s",
		eventID.String(),
		userID.String(),
		checkInSignature(eventID, userID, secretKey),
	)
}

func ParseCheckInCode(code string) (eventID, userID uuid.UUID, err error) {
	parts := strings.Split(code, ";")
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "event:") ||
		!strings.HasPrefix(parts[1], "user:") || !strings.HasPrefix(parts[2], "signature:") {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid check-in code format")
	}
	eventID, err = uuid.Parse(strings.TrimPrefix(parts[0], "event:"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid event ID in check-in code")
	}
	userID, err = uuid.Parse(strings.TrimPrefix(parts[1], "user:"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user ID in check-in code")
	}
	return eventID, userID, nil
}

func ValidateCheckInCode(code, secretKey string) bool {
	eventID, userID, err := ParseCheckInCode(code)
	if err != nil {
		return false
	}
	parts := strings.Split(code, ";")
	signature := strings.TrimPrefix(parts[2], "signature:")
	expected := checkInSignature(eventID, userID, secretKey)
	return hmac.Equal([]byte(expected), []byte(signature))
}
