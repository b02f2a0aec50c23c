package transaction

import (
	"testing"
)

func TestVerify(t *testing.T) {
	bob := seededKeypair(t, 2)

	tests := []struct {
		name     string
		mutate   func(tx *Transaction)
		wantCode ErrorCode
	}{
		{"untouched", func(*Transaction) {}, ""},
		{"no id", func(tx *Transaction) { tx.ID = nil }, ErrCodeInvalidTransaction},
		{"tampered id", func(tx *Transaction) { id := "00"; tx.ID = &id }, ErrCodeInvalidTransaction},
		{"tampered amount", func(tx *Transaction) { tx.Outputs[0].Amount = "2" }, ErrCodeInvalidTransaction},
		{"unsigned input", func(tx *Transaction) {
			tx.Inputs[0].Fulfillment = InputFulfillment{}
			id, _ := ComputeID(tx)
			tx.ID = &id
		}, ErrCodeInvalidFulfillment},
		{"wrong owner", func(tx *Transaction) {
			tx.Inputs[0].OwnersBefore = []string{bob.PublicKey}
			id, _ := ComputeID(tx)
			tx.ID = &id
		}, ErrCodeInvalidFulfillment},
		{"garbage fulfillment", func(tx *Transaction) {
			tx.Inputs[0].Fulfillment = InputFulfillment{URI: "not-base64!"}
			id, _ := ComputeID(tx)
			tx.ID = &id
		}, ErrCodeInvalidFulfillment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := mustFulfill(t, unsignedCreate(t, []string{alicePublicKey}, []string{alicePublicKey}, 1), alicePrivateKey)
			tt.mutate(tx)

			err := Verify(tx)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Verify() returned error: %v", err)
				}
				return
			}
			if !HasCode(err, tt.wantCode) {
				t.Errorf("Verify() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}
