package transaction

import (
	"encoding/hex"
	"encoding/json"
	"testing"
)

// Values computed independently with Python's json.dumps(sort_keys=True,
// separators=(",", ":"), ensure_ascii=False), hashlib.sha3_256 and RFC 8032 Ed25519
// for the alice key pair.
const (
	vectorAssetCID = "bafkreiawyk3ou5qzqec4ggbvrs56dv5ske2viwprf6he5wj5gr4yv5orsu"
	aliceCondition = `{"details":{"public_key":"G7J7bXF8cqSrjrxUKwcF8tCriEKC5CgyPHmtGwUi4BK3","type":"ed25519-sha-256"},"uri":"ni:///sha-256;7U_VA9u_5e4hsgGkaxO_n0W3ZtSlzhCNYWV6iEYU7mo?fpt=ed25519-sha-256&cost=131072"}`
	aliceOutputs   = `"outputs":[{"amount":"1","condition":` + aliceCondition + `,"public_keys":["G7J7bXF8cqSrjrxUKwcF8tCriEKC5CgyPHmtGwUi4BK3"]}],"version":"3.0"}`
)

type txVector struct {
	payload     string
	digest      string
	fulfillment string
	id          string
}

var (
	createVector = txVector{
		payload:     `{"assets":[{"data":"` + vectorAssetCID + `"}],"id":null,"inputs":[{"fulfillment":null,"fulfills":null,"owners_before":["G7J7bXF8cqSrjrxUKwcF8tCriEKC5CgyPHmtGwUi4BK3"]}],"metadata":null,"operation":"CREATE",` + aliceOutputs,
		digest:      "f66f1c534bb412f26af6e1ce3859a06a3ef1887739ea81e76d492990da89161f",
		fulfillment: "pGSAIOB8I6gYDZAytHw9Wo5hZ9Dme-TdyZPsSFds5YYD8T9mgUCOg0Wchl0YAdoe4rgAMxw-wT_FzSy8dmRcqofmGMZEtCYaixW5nnm34440ls9LYZwv1clXe1tBfY4Wt6G4leoL",
		id:          "0a841675378403210e93703f0d3a0095a766237c8549313a5b5d5003fdc8e51c",
	}
	transferVector = txVector{
		payload:     `{"assets":[{"id":"0a841675378403210e93703f0d3a0095a766237c8549313a5b5d5003fdc8e51c"}],"id":null,"inputs":[{"fulfillment":null,"fulfills":{"output_index":0,"transaction_id":"0a841675378403210e93703f0d3a0095a766237c8549313a5b5d5003fdc8e51c"},"owners_before":["G7J7bXF8cqSrjrxUKwcF8tCriEKC5CgyPHmtGwUi4BK3"]}],"metadata":null,"operation":"TRANSFER",` + aliceOutputs,
		digest:      "4efc6869e32f8ce55fca755372d6737ea9bb38eb1498a40326bc62961699b3a5",
		fulfillment: "pGSAIOB8I6gYDZAytHw9Wo5hZ9Dme-TdyZPsSFds5YYD8T9mgUBY-VG3bOlHYaPXhnrIrUKuvy42UZhw1szr3uCmuIdn8JXzCyQMSF-XwCZXja8mv0WRVEDRQF0c7_id8VYa_QsO",
		id:          "137a9adf1b82d8e6b45c7eac9d435700e55384c36faefb9875106ea3da5721b6",
	}
	metadataVector = txVector{
		payload:     `{"assets":[{"data":"` + vectorAssetCID + `"}],"id":null,"inputs":[{"fulfillment":null,"fulfills":null,"owners_before":["G7J7bXF8cqSrjrxUKwcF8tCriEKC5CgyPHmtGwUi4BK3"]}],"metadata":{"big":12345678901234567890,"w":1.0},"operation":"CREATE",` + aliceOutputs,
		digest:      "7bd1ae6a274225b321f2cca6c2ff8b0035d2e92f2cdbe98b196b0e934f9d87ff",
		fulfillment: "pGSAIOB8I6gYDZAytHw9Wo5hZ9Dme-TdyZPsSFds5YYD8T9mgUDuNluemUq7FMJAjTq8-wB0CLflzfLba5CcZo_4qVSPJlpc76kRptJBZf9R6gAZY6Qqsn0h9XJuCmuhUwzQVnwH",
		id:          "63d68b511e82e784f36d7dff58838f7a609ebe86ff9cd5fc4a980647aaf490e4",
	}
)

// aliceToAlice builds an unsigned transaction with one input owned by alice and one
// output of amount 1 locked to alice.
func aliceToAlice(t *testing.T, op Operation, asset Asset, fulfills *TransactionLink, metadata json.RawMessage) *Transaction {
	t.Helper()
	out, err := NewOutput([]string{alicePublicKey}, 1)
	if err != nil {
		t.Fatalf("NewOutput() returned error: %v", err)
	}
	details := out.Condition.Details
	return &Transaction{
		Assets: []Asset{asset},
		Inputs: []Input{{
			Fulfillment:  InputFulfillment{Details: &details},
			Fulfills:     fulfills,
			OwnersBefore: []string{alicePublicKey},
		}},
		Metadata:  metadata,
		Operation: op,
		Outputs:   []Output{out},
		Version:   Version,
	}
}

func TestKnownVectors(t *testing.T) {
	tests := []struct {
		name string
		tx   func(t *testing.T) *Transaction
		want txVector
	}{
		{
			name: "create",
			tx: func(t *testing.T) *Transaction {
				return aliceToAlice(t, OperationCreate, AssetData(vectorAssetCID), nil, nil)
			},
			want: createVector,
		},
		{
			name: "transfer signs the spent output link",
			tx: func(t *testing.T) *Transaction {
				link := &TransactionLink{OutputIndex: 0, TransactionID: createVector.id}
				return aliceToAlice(t, OperationTransfer, AssetRef(createVector.id), link, nil)
			},
			want: transferVector,
		},
		{
			name: "metadata number literals",
			tx: func(t *testing.T) *Transaction {
				metadata := json.RawMessage(`{"w": 1.0, "big": 12345678901234567890}`)
				return aliceToAlice(t, OperationCreate, AssetData(vectorAssetCID), nil, metadata)
			},
			want: metadataVector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := tt.tx(t)

			payload, err := signingPayload(tx)
			if err != nil {
				t.Fatalf("signingPayload() returned error: %v", err)
			}
			if string(payload) != tt.want.payload {
				t.Errorf("signing payload =\n%s\nwant\n%s", payload, tt.want.payload)
			}

			digest, err := SigningMessage(tx, tx.Inputs[0])
			if err != nil {
				t.Fatalf("SigningMessage() returned error: %v", err)
			}
			if got := hex.EncodeToString(digest); got != tt.want.digest {
				t.Errorf("SigningMessage() = %s, want %s", got, tt.want.digest)
			}

			signed := mustFulfill(t, tx, alicePrivateKey)
			if got := signed.Inputs[0].Fulfillment.URI; got != tt.want.fulfillment {
				t.Errorf("fulfillment = %s, want %s", got, tt.want.fulfillment)
			}
			if signed.ID == nil || *signed.ID != tt.want.id {
				t.Errorf("id = %v, want %s", signed.ID, tt.want.id)
			}
			if err := Verify(signed); err != nil {
				t.Errorf("Verify() returned error: %v", err)
			}
		})
	}
}
