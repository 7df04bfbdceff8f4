package xrpl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeMemoText(t *testing.T) {
	// "deadbeefcafe" as text, hex encoded
	memos := []rawMemoWrapper{
		{Memo: rawMemo{MemoData: "646561646265656663616665"}},
	}
	assert.Equal(t, "deadbeefcafe", decodeMemoText(memos))
}

func TestDecodeMemoTextEmpty(t *testing.T) {
	assert.Equal(t, "", decodeMemoText(nil))
}

func TestDecodeMemoTextInvalidHex(t *testing.T) {
	memos := []rawMemoWrapper{
		{Memo: rawMemo{MemoData: "not-hex"}},
	}
	assert.Equal(t, "", decodeMemoText(memos))
}

func TestDecodeMemoTextInvalidUTF8(t *testing.T) {
	memos := []rawMemoWrapper{
		{Memo: rawMemo{MemoData: "fffe"}},
	}
	assert.Equal(t, "", decodeMemoText(memos))
}

func TestDropsFromAmount(t *testing.T) {
	drops, ok := dropsFromAmount(json.RawMessage(`"1000000"`))
	assert.True(t, ok)
	assert.Equal(t, int64(1000000), drops)
}

func TestDropsFromAmountIssuedCurrency(t *testing.T) {
	// issued-currency amounts are objects and must be rejected
	_, ok := dropsFromAmount(json.RawMessage(`{"currency":"USD","issuer":"rvYAfWj5gh67oV6fW32ZzP3Aw4Eubs59B","value":"1"}`))
	assert.False(t, ok)
}

func TestObservedFromRawPayment(t *testing.T) {
	raw := []byte(`{
		"Account": "rSourceAccount",
		"Destination": "rDestinationAccount",
		"TransactionType": "Payment",
		"Amount": "2500000",
		"Memos": [{"Memo": {"MemoData": "616263313233"}}],
		"hash": "ABCDEF"
	}`)
	var tx rawTransaction
	assert.NoError(t, json.Unmarshal(raw, &tx))

	observed, ok := observedFromRaw(tx, rawMeta{TransactionResult: "tesSUCCESS"})
	assert.True(t, ok)
	assert.Equal(t, "rSourceAccount", observed.SourceAddress)
	assert.Equal(t, "rDestinationAccount", observed.DestinationAddress)
	assert.Equal(t, int64(2500000), observed.AmountDrops)
	assert.Equal(t, "abc123", observed.MemoText)
	assert.True(t, observed.Success)
	assert.Equal(t, "ABCDEF", observed.TxHash)
}

func TestObservedFromRawFailedResult(t *testing.T) {
	tx := rawTransaction{
		TransactionType: "Payment",
		Amount:          json.RawMessage(`"100"`),
	}
	observed, ok := observedFromRaw(tx, rawMeta{TransactionResult: "tecPATH_DRY"})
	assert.True(t, ok)
	assert.False(t, observed.Success)
}

func TestObservedFromRawNonPayment(t *testing.T) {
	tx := rawTransaction{
		TransactionType: "OfferCreate",
		Amount:          json.RawMessage(`"100"`),
	}
	_, ok := observedFromRaw(tx, rawMeta{TransactionResult: "tesSUCCESS"})
	assert.False(t, ok)
}
